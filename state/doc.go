// Package state publishes the resolved session outcome to downstream
// consumers (route guards, UI glue). A Store is an explicit context object
// owned by the engine — never a package-level singleton — so the bootstrap
// protocol stays testable in isolation.
//
// # Ordering contract
//
// Resolve writes the outcome and clears the verifying flag inside one
// critical section: a reader can never observe verifying=false paired with a
// stale or absent outcome. Resolved() returns a channel closed on the first
// resolution of the current generation; consumers block on it instead of
// polling Snapshot.
package state
