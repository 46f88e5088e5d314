package gc

import (
	"time"

	"github.com/joshuapare/gengc/heap"
	"github.com/joshuapare/gengc/internal/sysmem"
	"github.com/joshuapare/gengc/internal/taskfarm"
)

// farmQueueDepth bounds the number of queued engine tasks per phase.
const farmQueueDepth = 100

// Collector sequences the collection engines over one heap instance and owns
// the policy state that persists between episodes. All policy state lives
// here rather than in package globals, so independent heaps and deterministic
// tests each get their own Collector.
//
// A Collector is driven synchronously by the allocator with the world
// stopped; it is not safe for concurrent use.
type Collector struct {
	cfg     Config
	reg     *heap.Registry
	eng     Engines
	physMem PhysicalMemory
	farm    *taskfarm.Farm

	// Cross-episode policy state.
	generation uint // consecutive collections that kept survivors "new"
	fullGCNext bool // carried recovery flag: force the next episode full

	stats Stats

	// onGrow is a test hook called after every successful space growth.
	onGrow func(kind heap.Kind, words heap.Words)
}

// New returns a Collector over the registry with the given engines. Zero
// Config fields take their DefaultConfig values.
func New(cfg Config, reg *heap.Registry, eng Engines) *Collector {
	return &Collector{
		cfg:     cfg.normalize(),
		reg:     reg,
		eng:     eng,
		physMem: sysmem.Total,
	}
}

// SetPhysicalMemory overrides the physical-memory query, mainly for tests.
// A nil fn restores the platform default.
func (c *Collector) SetPhysicalMemory(fn PhysicalMemory) {
	if fn == nil {
		fn = sysmem.Total
	}
	c.physMem = fn
}

// InitWorkers creates the process-wide worker pool the collection engines
// parallelize over. It may be called once; the pool has a fixed thread count
// and no workers are created mid-collection.
func (c *Collector) InitWorkers(threads uint) error {
	if c.farm != nil {
		return ErrWorkersInitialized
	}
	farm, err := taskfarm.New(threads, farmQueueDepth)
	if err != nil {
		return err
	}
	c.farm = farm
	return nil
}

// MustInitWorkers is InitWorkers for embedders that treat pool creation as a
// startup precondition: it panics on failure.
func (c *Collector) MustInitWorkers(threads uint) {
	if err := c.InitWorkers(threads); err != nil {
		panic("gc: unable to initialise the worker pool: " + err.Error())
	}
}

// Farm returns the worker pool, or nil before InitWorkers.
func (c *Collector) Farm() *taskfarm.Farm { return c.farm }

// Stats returns a copy of the accumulated collection statistics.
func (c *Collector) Stats() Stats { return c.stats }

// Generation returns the age of the current generation: the number of
// consecutive collections that kept its survivors "new".
func (c *Collector) Generation() uint { return c.generation }

// FullScheduled reports whether the next collection is already forced full.
func (c *Collector) FullScheduled() bool { return c.fullGCNext }

// RunCollection runs one collection episode. requireFull forces a full
// collection; otherwise the episode starts minor and may escalate.
// wordsRequired is the allocation that could not be satisfied and must be
// available in a single mutable space on success.
//
// The bitmaps must be completely clean on entry; they are clean again on
// return, success or failure. A nil return means space is available (or the
// generation was handled); ErrHeapExhausted means even a full collection at
// minimum thresholds could not recover.
func (c *Collector) RunCollection(requireFull bool, wordsRequired heap.Words) error {
	full := requireFull
	start := time.Now()
	defer func() {
		c.stats.TotalTime += time.Since(start)
	}()

	// The internal retry loop: re-entering the top of this loop is the
	// original goto GC_AGAIN. It is bounded by the hard-failure return.
	for {
		c.stats.Episodes++

		// Setup: validate ordering, record low-water marks, reset weak
		// bounds and the per-episode counters.
		for _, s := range c.reg.Local() {
			assertf(s.CheckOrdering() == nil,
				"space %d ordering broken at episode entry: pointer=%d gen_top=%d top=%d",
				s.ID, s.Pointer, s.GenTop, s.Top)
			s.GenBottom = s.Pointer
			s.ResetWeakBounds()
			s.ResetCounters()
		}
		for _, p := range c.reg.Permanent() {
			p.ResetWeakBounds()
		}

		// A prior episode's recovery action may insist on a full collection.
		if c.fullGCNext {
			full = true
			c.fullGCNext = false
		}
		if full {
			c.stats.FullEpisodes++
			// Collect everything: widen every generation window to the top.
			for _, s := range c.reg.Local() {
				s.GenTop = s.Top
			}
		} else {
			c.stats.MinorEpisodes++
		}

		// Mark phase.
		phase := time.Now()
		c.eng.Mark.Mark(c.reg, full)
		c.stats.MarkTime += time.Since(phase)

		// Weak-reference sweep against the bitmap just built.
		c.eng.Weak.SweepWeak(c.reg)

		// On a full collection, expand the immutable area before compaction
		// so there is room to copy the immutables currently sitting in the
		// mutable buffer. The mutable area is resized later, when the exact
		// requirement is known.
		if full {
			var immutableData heap.Words
			for _, s := range c.reg.Local() {
				immutableData += s.IMarked
			}
			c.expandImmutable(immutableData)
		}

		// Compact phase.
		phase = time.Now()
		overflow := c.eng.Compact.Compact(c.reg)
		c.stats.CompactTime += time.Since(phase)
		c.auditCompaction()

		// Update phase.
		phase = time.Now()
		c.eng.Update.Update(c.reg)
		c.stats.UpdateTime += time.Since(phase)
		c.auditUpdate(overflow)

		// Restore the clean-bitmap invariant: only bits below GenTop can be
		// dirty, so clearing [0, GenTop) leaves every bitmap fully clear.
		for _, s := range c.reg.Local() {
			s.Bitmap.ClearRange(0, s.GenTop)
		}

		if full {
			// Allow for the overflow when sizing the immutable region.
			c.adjustHeapSize(heap.Immutable, overflow)
			iFull := c.stillFull(heap.Immutable, overflow, full)
			mFull := c.stillFull(heap.Mutable, wordsRequired, full)
			// If a generation-recollect retry is already on the cards, leave
			// the mutable region alone: that retry will reassess sizing.
			if iFull || !mFull || !c.shouldRecollect() {
				c.adjustHeapSize(heap.Mutable, wordsRequired)
			}
		}

		if c.eng.Check != nil {
			c.eng.Check.Check(c.reg)
		}

		// Have we cleared enough space?
		iFull := c.stillFull(heap.Immutable, overflow, full)
		mFull := c.stillFull(heap.Mutable, wordsRequired, full)
		if iFull || mFull {
			switch {
			case !iFull && c.shouldRecollect():
				// The next collection re-collects this generation, which
				// should recover once the tombstoned space is usable.
			case !full:
				c.fullGCNext = true // escalate
			case c.stillFull(heap.Immutable, 0, false) ||
				c.stillFull(heap.Mutable, wordsRequired, false):
				// A full collection missed even the minor-collection bar:
				// no forward progress is possible under this configuration.
				return ErrHeapExhausted
			}
		}

		if c.shouldRecollect() {
			// Keep the survivors "new" and retry them next time. After a
			// full collection the next one must be full too, otherwise the
			// still-new immutables would all be marked again anyway.
			c.fullGCNext = c.fullGCNext || full
			c.generation++
		} else {
			// Merge this generation with the old one.
			for _, s := range c.reg.Local() {
				s.GenTop = s.Pointer
			}
			c.generation = 0
		}

		// Is there now a mutable space that can take the original request?
		haveSpace := false
		for _, s := range c.reg.OfKind(heap.Mutable) {
			if s.Free() >= wordsRequired {
				haveSpace = true
				break
			}
		}
		if !haveSpace {
			c.stats.Retries++
			continue // retry the recovery action immediately
		}

		// If a full collection is scheduled and the heap is already close to
		// physical memory, run it now: waiting would only add mutable data
		// and worsen the thrashing around the inevitable full collection.
		if c.fullGCNext && c.heapLoadPercent() > c.cfg.HeapLoadPercent {
			c.stats.Retries++
			continue
		}

		return nil
	}
}

// auditCompaction asserts the compaction postconditions: mutable objects are
// never relocated, no more immutable words were copied than marked, and every
// frontier stayed inside its generation window.
func (c *Collector) auditCompaction() {
	var mCopied, iCopied, iMarked heap.Words
	for _, s := range c.reg.Local() {
		if s.Kind == heap.Mutable {
			mCopied += s.Copied
		} else {
			iMarked += s.IMarked
			iCopied += s.Copied
		}
	}
	assertf(mCopied == 0, "compaction relocated %d mutable words", mCopied)
	assertf(iCopied <= iMarked,
		"compaction copied %d immutable words into immutable spaces but only %d are marked there",
		iCopied, iMarked)

	for _, s := range c.reg.Local() {
		assertf(s.Pointer <= s.GenTop,
			"space %d: pointer %d outside [0, gen_top=%d] after compaction",
			s.ID, s.Pointer, s.GenTop)
	}
}

// auditUpdate asserts the update-phase accounting identity: every marked word
// is accounted for exactly once, with overflow words counted as still
// mutable-resident.
func (c *Collector) auditUpdate(overflow heap.Words) {
	var iUpdated, mUpdated, iMarked, mMarked heap.Words
	for _, s := range c.reg.Local() {
		iMarked += s.IMarked
		mMarked += s.MMarked
		if s.Kind == heap.Mutable {
			mUpdated += s.Updated
		} else {
			iUpdated += s.Updated
		}
	}
	assertf(iUpdated == iMarked-overflow,
		"update phase: immutable updated=%d, want marked-overflow=%d",
		iUpdated, iMarked-overflow)
	assertf(mUpdated == mMarked+overflow,
		"update phase: mutable updated=%d, want marked+overflow=%d",
		mUpdated, mMarked+overflow)

	c.stats.WordsMarked += iMarked + mMarked
	c.stats.WordsUpdated += iUpdated + mUpdated
	for _, s := range c.reg.Local() {
		c.stats.WordsCopied += s.Copied
	}
	c.stats.ImmutableOverflow += overflow
}

// heapLoadPercent estimates resident heap load as a percentage of physical
// memory. Mutable spaces count in full, since their whole extent will be used
// for allocation; immutable spaces count only the area in use. Returns 0 when
// physical memory cannot be determined, which disables the check.
func (c *Collector) heapLoadPercent() int {
	memBytes, ok := c.physMem()
	if !ok || memBytes == 0 {
		return 0
	}
	memWords := memBytes / heap.WordBytes

	var spaceUsed heap.Words
	for _, p := range c.reg.Permanent() {
		spaceUsed += p.Top
	}
	for _, s := range c.reg.Local() {
		if s.Kind == heap.Mutable {
			spaceUsed += s.Size()
		} else {
			spaceUsed += s.Used()
		}
	}

	// Crude estimate: leaves out the C heap, executable pages and the
	// bitmaps (a fixed fraction of the sizes, so it folds into the
	// threshold).
	if memWords < 100 {
		return 100
	}
	load := spaceUsed / (memWords / 100)
	if load > 100 {
		return 100
	}
	return int(load)
}
