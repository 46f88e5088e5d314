package gc

import "github.com/joshuapare/gengc/heap"

// The collection engines are external to this package: the orchestrator
// sequences them and audits their counters, but never inspects object
// contents itself.

// MarkEngine traces the object graph from the roots and sets a bitmap bit for
// every reachable word. For a minor collection it only follows data inside
// each space's generation window [GenBottom, GenTop); a full collection
// traces everything. It populates IMarked and MMarked on every local space.
type MarkEngine interface {
	Mark(reg *heap.Registry, full bool)
}

// WeakEngine sweeps weak references using the bitmap the mark phase just
// built, clearing targets that are no longer reachable and narrowing each
// space's weak bounds.
type WeakEngine interface {
	SweepWeak(reg *heap.Registry)
}

// CompactEngine relocates marked objects, writing a tombstone at each old
// location, and returns the number of immutable words that could not be moved
// into immutable space. It populates Copied on destination spaces and moves
// each space's Pointer; mutable objects are never relocated.
type CompactEngine interface {
	Compact(reg *heap.Registry) (immutableOverflow heap.Words)
}

// UpdateEngine rewrites every pointer that referenced a relocated object's
// tombstoned location to the new location, populating Updated per space.
type UpdateEngine interface {
	Update(reg *heap.Registry)
}

// ConsistencyChecker is a diagnostic hook invoked once per episode after the
// update phase. Its result is not consumed by control flow; implementations
// report or abort on their own terms.
type ConsistencyChecker interface {
	Check(reg *heap.Registry)
}

// PhysicalMemory reports the machine's physical memory in bytes, with
// ok == false when it cannot be determined.
type PhysicalMemory func() (bytes uint64, ok bool)

// Engines bundles the external collaborators for a Collector. Mark, Weak,
// Compact and Update are required; Check may be nil.
type Engines struct {
	Mark    MarkEngine
	Weak    WeakEngine
	Compact CompactEngine
	Update  UpdateEngine
	Check   ConsistencyChecker
}
