package gc

import "github.com/joshuapare/gengc/heap"

// stillFull decides, after a collection, whether the region of the given kind
// still lacks the space it needs. It returns true (still full) when either
// the pending allocation or the slack requirement remains unsatisfied after
// scanning every space of the kind.
//
// For the mutable region wordsNeeded is the allocation that triggered the
// collection and must fit; it is consumed against per-space free areas before
// the slack. For the immutable region wordsNeeded is overflow that need not
// be contiguous, so it is folded into the aggregate slack requirement.
func (c *Collector) stillFull(kind heap.Kind, wordsNeeded heap.Words, fullGC bool) bool {
	var requiredFree heap.Words
	if fullGC {
		requiredFree = c.cfg.fullSlack(kind)
	} else {
		requiredFree = c.cfg.minSlack(kind)
	}
	if kind == heap.Immutable {
		requiredFree += wordsNeeded
		wordsNeeded = 0
	}

	for _, s := range c.reg.OfKind(kind) {
		free := s.Free()
		if free >= wordsNeeded {
			free -= wordsNeeded
			wordsNeeded = 0
		}
		if free >= requiredFree {
			requiredFree = 0
		} else {
			requiredFree -= free
		}
	}
	return wordsNeeded != 0 || requiredFree != 0
}
