// Package gc implements the collection orchestrator and adaptive heap-sizing
// policy of a generational mark-compact garbage collector.
//
// # Overview
//
// The collector is generational with two modes, minor and full, over two
// kinds of local space, mutable and immutable. New objects are always
// allocated in mutable spaces, downward from the top of each space. A
// collection has three external phases:
//
//  1. Mark: working from the roots (permanent spaces, runtime roots and, for
//     a minor collection, older data in the local spaces), set a bitmap bit
//     for every reachable word. A minor collection only follows data in the
//     current generation window.
//  2. Compact: copy marked objects upward to compact the spaces, moving
//     immutable survivors into immutable spaces and leaving a tombstone at
//     each old location. Immutable words with no room in the immutable area
//     stay behind and are reported as overflow.
//  3. Update: rewrite every pointer that goes through a tombstone to the
//     object's new location.
//
// Those phases, the weak-reference sweep and the consistency checker are
// external engines consumed through the narrow interfaces in this package.
// What this package owns is the decision logic around them: when a collection
// is minor versus full, how much each region grows or shrinks, whether a
// finished collection freed enough space, and whether the survivors of the
// current generation merge into the old data or stay "new" for one more
// cycle.
//
// # Entry point
//
// The Collector is driven synchronously by the allocator when an allocation
// cannot be satisfied:
//
//	c := gc.New(gc.DefaultConfig, reg, engines)
//	if err := c.RunCollection(false, wordsNeeded); err != nil {
//	    // heap exhausted under the current configuration
//	}
//
// Mutator threads must be stopped for the whole call; the caller establishes
// and releases stop-the-world synchronization. Only one collection can run at
// a time and there is no cancellation: an episode runs to success or to an
// ErrHeapExhausted return.
//
// # Sizing feedback loop
//
// After a full collection the sizing policy grows a region when its free
// space falls short of the configured slack (or, for the mutable region, when
// no single space could hold the triggering allocation) and shrinks it by
// deleting recently created, completely empty spaces when there is excess.
// Growth requests that cannot be fully satisfied are tolerated; the fullness
// oracle then decides whether to escalate to a full collection, retry the
// same generation, or report exhaustion.
package gc
