// Package ir holds the plain data types shared by every storesim package.
//
// ir imports nothing internal. The entity store, message bus, rule engine,
// agents and persistence layer all exchange the records defined here.
//
// Key constraints:
//   - Money is integer cents (Cents), never float
//   - Snapshots are value copies; mutating one never reaches the store
//   - Canonical JSON (MarshalCanonical) is the only encoding used for hashing
//   - Wall-clock fields are excluded from hashed representations
package ir
