// Package heap defines the spaces and segment registry the collector works
// over.
//
// # Overview
//
// A managed heap is a set of local spaces plus zero or more permanent spaces.
// Every local space is either mutable or immutable (fixed at creation). New
// objects are always allocated in mutable spaces, downward from the top of the
// space; the compactor moves immutable survivors into immutable spaces.
//
// All addressing is word-granular and space-relative: a location is a
// (space, word offset) pair, and a space's valid offsets are [0, Top). This
// replaces raw-pointer arithmetic with offsets that are safe to check and
// cheap to reason about.
//
// # Space layout
//
// Within a local space, offsets are ordered
//
//	0 <= Pointer <= GenTop <= Top
//
// where Pointer is the allocation frontier (the space below it is free),
// GenTop divides the current generation from data that survived earlier
// collections, and GenBottom records the frontier at the start of the current
// collection episode. The generation window [Pointer, GenTop) holds everything
// allocated since the last generation merge.
//
// Each local space carries a mark bitmap, one bit per word over [0, Top).
// Only bits in [0, GenTop) may ever be set, and the collector clears them all
// again before the episode ends.
//
// # Registry
//
// The Registry owns the spaces in insertion order. Iteration order is a
// contract, not an accident: the shrink pass deletes the most recently created
// empty space first, and allocation-space search is first-fit in creation
// order. An optional word budget lets tests and embedders bound total local
// heap size; requests beyond the budget are refused, which drives the sizing
// policy's halving retry.
//
// # Related packages
//
//   - github.com/joshuapare/gengc/gc: sizing policy and collection orchestrator
//   - github.com/joshuapare/gengc/heap/verify: invariant checks over a registry
//   - github.com/joshuapare/gengc/internal/bitmap: the mark bitmap itself
package heap
