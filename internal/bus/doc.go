// Package bus implements the in-process message bus agents use to talk to
// each other without holding references to one another.
//
// Every message ever sent is kept in a global append-only log; each
// registered agent also has a FIFO mailbox holding the messages it has not
// yet polled. Message ids are strictly increasing and never reused.
//
// The bus is not safe for concurrent use. The simulation loop is its only
// writer.
package bus
