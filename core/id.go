// Package core holds the erasure-boundary types shared by the root taskrun
// package and its runner/pool subpackages: Id, Waker, and the type-erased
// Task interface. It exists purely to keep the dependency graph acyclic —
// runner and pool need these types without importing the root package,
// which itself imports pool to assemble the executor facade.
package core

// Id is an opaque, totally-ordered identifier assigned to a submitted task.
// Nothing about its bit layout is observable; it is only equatable and
// usable as a map key.
type Id struct {
	index uint64
}

// IdGenerator issues monotonically increasing ids. It is not safe for
// concurrent use; the executor owns a single generator and calls Next
// from one goroutine at a time (submission is serialized through Run).
type IdGenerator struct {
	next uint64
}

// Next returns the next id, or false if the generator has been exhausted
// (the counter would overflow uint64). Once exhausted, a generator never
// issues another id.
func (g *IdGenerator) Next() (Id, bool) {
	if g.next == ^uint64(0) {
		return Id{}, false
	}
	id := Id{index: g.next}
	g.next++
	return id, true
}
