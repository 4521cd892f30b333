// Package entity is the authoritative in-memory store of business records.
//
// Every mutation goes through a Store method so the invariants hold at all
// times:
//   - inventory quantity and customer budget never go negative
//   - purchase is all-or-nothing
//   - each Book owns exactly one Inventory, created with it
//   - transactions are append-only
//
// The Store has no internal locking. It is driven by one goroutine, the
// simulation loop; readers see consistent state between steps.
package entity
