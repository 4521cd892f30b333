// Package harness runs scripted store scenarios against an entity store,
// a message bus and the rule engine, without agents or randomness.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_b_purchase_succeeds
//	description: "An affordable in-stock purchase debits budget and stock"
//	setup:
//	  customers:
//	    - { id: c1, name: Alice Johnson, budget: 5000 }
//	  employees:
//	    - { id: e1, name: Sarah Manager, role: Store Manager, manages: [b1] }
//	  books:
//	    - { id: b1, title: Fantasy Realms, price: 2000, quantity: 3, threshold: 1 }
//	  mailboxes: [x]
//	flow:
//	  - op: purchase
//	    args: { customer: c1, book: b1 }
//	    expect:
//	      outcome: ok
//	      result: { amount: 2000 }
//	assertions:
//	  - { type: budget, id: c1, equals: 3000 }
//	  - { type: transaction_count, equals: 1 }
//
// Money is in integer cents. Every customer, employee and book id, plus
// "system" and any extra mailboxes, is registered with the bus.
//
// # Operations
//
//   - purchase {customer, book}: ok, or rejected when unaffordable or out of stock
//   - restock {inventory, amount}
//   - adjust_price {book, price}
//   - classify: one rule engine pass; the result lists every tagged entity
//   - send {from, to, type, payload}
//   - broadcast {from, type, payload}
//   - poll {mailbox}
//
// An operation that fails with an error records outcome "error" and the
// scenario continues. Malformed arguments (wrong type, null) abort the run.
//
// # Assertion Types
//
//   - budget, quantity, price: an entity's current value equals N
//   - tags: an entity's current tag set equals the list
//   - transaction_count: the store holds N transactions
//   - message_stats: subset match on total, delivered, pending, registered
//
// # Golden Traces
//
// Each run produces a canonical JSON document of the trace and the final
// state. RunWithGolden compares it with testdata/golden/<name>.golden.
package harness
