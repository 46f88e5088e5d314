package gc

import "github.com/joshuapare/gengc/heap"

// roundToBitmapUnit rounds a word count up to a whole number of bitmap
// backing words, so a space's mark bitmap never ends in a partial word.
func roundToBitmapUnit(words heap.Words) heap.Words {
	const unit = heap.BitmapUnit
	return (words + unit - 1) / unit * unit
}

// tryGrow attempts to obtain one new space of the requested size, halving the
// request on refusal until it is no longer above the configured floor.
// Failure is soft: the collection proceeds with whatever space exists.
func (c *Collector) tryGrow(kind heap.Kind, words heap.Words) bool {
	if c.cfg.DisableGrowth {
		return false
	}
	for words > 0 {
		rounded := roundToBitmapUnit(words)
		if _, ok := c.reg.NewLocalSpace(rounded, kind); ok {
			c.stats.GrowRequests++
			c.stats.GrowWords += rounded
			if c.onGrow != nil {
				c.onGrow(kind, rounded)
			}
			return true
		}
		words /= 2
		if words <= c.cfg.MinGrowWords {
			break
		}
	}
	return false
}

// expandImmutable runs after the mark phase of a full collection, before
// compaction, so the compactor has room to move immutable survivors out of
// the mutable area. markedImmutable is the total of i_marked across all local
// spaces.
func (c *Collector) expandImmutable(markedImmutable heap.Words) {
	var currentSize heap.Words
	nSpaces := 0
	for _, s := range c.reg.OfKind(heap.Immutable) {
		currentSize += s.Size()
		nSpaces++
	}

	need := c.cfg.ImmutableFreeWords + markedImmutable
	if need <= currentSize {
		return
	}

	// Grow by the shortfall, at least one segment, with an extra segment per
	// SpaceFactorDiv existing segments: regions that already fragmented into
	// many spaces grow in bigger increments.
	growth := need - currentSize
	if growth < c.cfg.ImmutableSegWords {
		growth = c.cfg.ImmutableSegWords
	}
	growth += c.cfg.ImmutableSegWords * heap.Words(nSpaces/c.cfg.SpaceFactorDiv)

	c.tryGrow(heap.Immutable, growth) // failure tolerated
}

// adjustHeapSize runs after a full collection and brings the region of the
// given kind toward its configured free-space target: grow when short (or, for
// the mutable region, when no single space can hold the triggering
// allocation), otherwise shrink by deleting recently created, completely
// empty spaces.
func (c *Collector) adjustHeapSize(kind heap.Kind, wordsRequired heap.Words) {
	var currentlyFree, largestFree heap.Words
	nSpaces := 0
	for _, s := range c.reg.OfKind(kind) {
		free := s.Free()
		currentlyFree += free
		if free > largestFree {
			largestFree = free
		}
		nSpaces++
	}

	requiredFree := wordsRequired + c.cfg.fullSlack(kind)
	segSize := c.cfg.segWords(kind)

	// A very large allocation (a new stack segment, say) must fit in one
	// mutable space; aggregate free space is not enough.
	if requiredFree > currentlyFree || (kind == heap.Mutable && largestFree < wordsRequired) {
		var growth heap.Words
		if requiredFree > currentlyFree {
			growth = requiredFree - currentlyFree
		}
		if growth < segSize {
			growth = segSize
		}
		growth += segSize * heap.Words(nSpaces/c.cfg.SpaceFactorDiv)
		// Never request less than the allocation that triggered the episode.
		if growth < wordsRequired {
			growth = wordsRequired
		}
		c.tryGrow(kind, growth) // failure tolerated
		return
	}

	if c.cfg.DisableShrink {
		return
	}

	// Excess free space: delete empty spaces, most recently created first,
	// while they fit in the shrink budget. A non-empty space is never
	// deleted.
	budget := currentlyFree - requiredFree
	// Snapshot: deletion mutates the registry's slice under us.
	local := append([]*heap.Space(nil), c.reg.Local()...)
	for i := len(local) - 1; i >= 0; i-- {
		s := local[i]
		if s.Kind != kind || !s.Empty() || s.Size() > budget {
			continue
		}
		budget -= s.Size()
		c.reg.DeleteLocalSpace(s)
		c.stats.ShrinkWords += s.Size()
	}
}
