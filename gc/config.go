package gc

import "github.com/joshuapare/gengc/heap"

// Config carries the collector's tuning parameters. All word counts are
// heap words. The zero value of any field is replaced by the DefaultConfig
// value when a Collector is created.
type Config struct {
	// MutableSegWords and ImmutableSegWords are the unit sizes for new
	// spaces; growth requests are floored at one segment so the heap does
	// not accumulate many small spaces.
	MutableSegWords   heap.Words
	ImmutableSegWords heap.Words

	// MutableFreeWords and ImmutableFreeWords are the free-space targets a
	// region should have after a full collection.
	MutableFreeWords   heap.Words
	ImmutableFreeWords heap.Words

	// MutableMinFree and ImmutableMinFree are the minimum free space a
	// region must retain after a minor collection. They are also the
	// last-resort bar a failing full collection is measured against before
	// reporting exhaustion.
	MutableMinFree   heap.Words
	ImmutableMinFree heap.Words

	// MinGrowWords is the floor of the growth halving loop: once a halved
	// request is not above this, the grow attempt gives up (soft failure).
	MinGrowWords heap.Words

	// SpaceFactorDiv inflates growth by one extra segment per this many
	// existing segments of the kind, so fragmented regions grow in bigger
	// steps. A tuning constant with no derived "correct" value.
	SpaceFactorDiv int

	// HeapLoadPercent is the resident-heap share of physical memory above
	// which a scheduled full collection runs immediately instead of waiting
	// for the next allocation failure.
	HeapLoadPercent int

	// DisableGrowth refuses all heap growth. Diagnostic/testing only.
	DisableGrowth bool

	// DisableShrink keeps empty spaces alive instead of deleting them.
	// Diagnostic only.
	DisableShrink bool
}

// DefaultConfig mirrors the historical defaults at word granularity.
var DefaultConfig = Config{
	MutableSegWords:    1 << 20, // 1M words per mutable segment
	ImmutableSegWords:  1 << 20,
	MutableFreeWords:   1 << 20,
	ImmutableFreeWords: 1 << 20,
	MutableMinFree:     1 << 16,
	ImmutableMinFree:   1 << 16,
	MinGrowWords:       64 * 1024,
	SpaceFactorDiv:     3,
	HeapLoadPercent:    80,
}

// normalize fills zero fields from DefaultConfig. Boolean flags are taken as
// given.
func (c Config) normalize() Config {
	d := DefaultConfig
	if c.MutableSegWords == 0 {
		c.MutableSegWords = d.MutableSegWords
	}
	if c.ImmutableSegWords == 0 {
		c.ImmutableSegWords = d.ImmutableSegWords
	}
	if c.MutableFreeWords == 0 {
		c.MutableFreeWords = d.MutableFreeWords
	}
	if c.ImmutableFreeWords == 0 {
		c.ImmutableFreeWords = d.ImmutableFreeWords
	}
	if c.MinGrowWords == 0 {
		c.MinGrowWords = d.MinGrowWords
	}
	if c.SpaceFactorDiv == 0 {
		c.SpaceFactorDiv = d.SpaceFactorDiv
	}
	if c.HeapLoadPercent == 0 {
		c.HeapLoadPercent = d.HeapLoadPercent
	}
	return c
}

// segWords returns the segment unit for the kind.
func (c Config) segWords(kind heap.Kind) heap.Words {
	if kind == heap.Mutable {
		return c.MutableSegWords
	}
	return c.ImmutableSegWords
}

// fullSlack returns the post-full-collection free-space target for the kind.
func (c Config) fullSlack(kind heap.Kind) heap.Words {
	if kind == heap.Mutable {
		return c.MutableFreeWords
	}
	return c.ImmutableFreeWords
}

// minSlack returns the post-minor-collection free-space minimum for the kind.
func (c Config) minSlack(kind heap.Kind) heap.Words {
	if kind == heap.Mutable {
		return c.MutableMinFree
	}
	return c.ImmutableMinFree
}
