// Package simulate provides synthetic collection engines that drive the
// orchestrator without a real object graph.
//
// The engines model survival statistically: a configurable fraction of each
// space's generation window survives the mark phase, a fraction of the
// mutable survivors is immutable data, and the compactor moves those
// immutable words into immutable spaces as room allows, reporting the rest as
// overflow. All counter accounting matches what the real engines would
// produce, so the orchestrator's invariant audits hold.
//
// Used by the gc integration tests and by gcctl sim.
package simulate

import (
	"math/rand"

	"github.com/joshuapare/gengc/heap"
	"github.com/joshuapare/gengc/internal/taskfarm"
)

// Config controls the synthetic survival model. Percentages are 0-100.
type Config struct {
	// SurvivalPercent is the fraction of generation-window words that the
	// mark phase finds reachable.
	SurvivalPercent int

	// ImmutablePercent is the fraction of surviving words in mutable spaces
	// that are immutable data (candidates for copying out).
	ImmutablePercent int

	// JitterPercent randomizes survival per space by up to this many
	// percentage points in either direction. Zero disables jitter.
	JitterPercent int
}

// Engines implements the gc engine interfaces over the survival model.
// A single Engines value serves all four phases of one collector; it is not
// safe for concurrent collections, which cannot overlap anyway.
type Engines struct {
	cfg  Config
	rng  *rand.Rand
	farm *taskfarm.Farm // optional; parallelizes per-space bitmap work
}

// New returns engines seeded for deterministic runs. farm may be nil, in
// which case all work runs inline.
func New(seed int64, cfg Config, farm *taskfarm.Farm) *Engines {
	return &Engines{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		farm: farm,
	}
}

// survival picks the per-space survival percentage, with jitter applied.
func (e *Engines) survival() int {
	p := e.cfg.SurvivalPercent
	if e.cfg.JitterPercent > 0 {
		p += e.rng.Intn(2*e.cfg.JitterPercent+1) - e.cfg.JitterPercent
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p
}

// Mark sets bitmap bits for the surviving fraction of every generation
// window and populates the marked-word counters. Windows of distinct spaces
// are independent, so the bitmap writes are farmed out when a pool is
// available.
func (e *Engines) Mark(reg *heap.Registry, full bool) {
	_ = full // the window [Pointer, GenTop) already reflects the mode
	for _, s := range reg.Local() {
		window := s.GenTop - s.Pointer
		live := window * heap.Words(e.survival()) / 100
		if s.Kind == heap.Immutable {
			s.IMarked = live
			s.MMarked = 0
		} else {
			im := live * heap.Words(e.cfg.ImmutablePercent) / 100
			s.IMarked = im
			s.MMarked = live - im
		}
		space := s
		setBits := func() {
			space.Bitmap.SetRange(space.Pointer, space.Pointer+live)
		}
		if e.farm != nil {
			e.farm.Submit(setBits)
		} else {
			setBits()
		}
	}
	if e.farm != nil {
		e.farm.Wait()
	}
}

// SweepWeak narrows each space's weak bounds to its marked window. The model
// has no real weak targets to clear.
func (e *Engines) SweepWeak(reg *heap.Registry) {
	for _, s := range reg.Local() {
		if s.IMarked+s.MMarked > 0 {
			s.LowestWeak = s.Pointer
			s.HighestWeak = s.GenTop
		}
	}
}

// Compact slides survivors to the top of each generation window and copies
// immutable survivors out of mutable spaces into immutable spaces with room.
// Mark accounting moves with the copied words, as the real compactor does
// when it re-marks an object at its new location.
func (e *Engines) Compact(reg *heap.Registry) heap.Words {
	// Immutable spaces first: compact their own survivors in place so the
	// room below the frontier is known before anything is copied in.
	for _, d := range reg.OfKind(heap.Immutable) {
		d.Bitmap.ClearRange(0, d.GenTop)
		d.Pointer = d.GenTop - d.IMarked
		d.Bitmap.SetRange(d.Pointer, d.GenTop)
	}

	var overflow heap.Words
	for _, s := range reg.OfKind(heap.Mutable) {
		remaining := s.IMarked
		for _, d := range reg.OfKind(heap.Immutable) {
			if remaining == 0 {
				break
			}
			chunk := min(remaining, d.Free())
			if chunk == 0 {
				continue
			}
			d.Pointer -= chunk
			d.Bitmap.SetRange(d.Pointer, d.Pointer+chunk)
			d.Copied += chunk
			d.IMarked += chunk
			s.IMarked -= chunk
			remaining -= chunk
		}
		// Whatever found no home stays behind as overflow, compacted to the
		// top of the window together with the mutable survivors.
		overflow += remaining
		kept := s.MMarked + remaining
		s.Bitmap.ClearRange(0, s.GenTop)
		s.Pointer = s.GenTop - kept
		s.Bitmap.SetRange(s.Pointer, s.GenTop)
	}
	return overflow
}

// Update credits every resident marked word with a pointer fixup, satisfying
// the orchestrator's accounting identity (overflow words count as
// mutable-resident).
func (e *Engines) Update(reg *heap.Registry) {
	for _, s := range reg.Local() {
		if s.Kind == heap.Immutable {
			s.Updated = s.IMarked
		} else {
			s.Updated = s.MMarked + s.IMarked
		}
	}
}

// Allocate models the mutator: first-fit allocation of words from a mutable
// space. Returns false when no space can hold the request, which is the
// allocator's cue to run a collection.
func Allocate(reg *heap.Registry, words heap.Words) bool {
	for _, s := range reg.OfKind(heap.Mutable) {
		if _, ok := s.Allocate(words); ok {
			return true
		}
	}
	return false
}
