package gc

// maxGenerationAge caps how many consecutive collections may keep survivors
// "new". Beyond it the generation always merges, so a merge is never deferred
// indefinitely.
const maxGenerationAge = 3

// shouldRecollect decides whether the next minor collection should target the
// same generation again instead of merging its survivors into the old data.
//
// If fewer than half of the current generation's live words had their
// addresses updated, the compaction left large unmoved regions, typically a
// large object that found no contiguous hole. Merging now would break the
// assumption that old data is stable; retrying the same generation once more
// space exists usually recovers. The space a moved object vacates only
// becomes usable after the update phase retires its tombstone, which is why
// this minor collection may not have created the hole yet.
func (c *Collector) shouldRecollect() bool {
	if c.generation > maxGenerationAge {
		return false
	}

	var total, updated uint64
	for _, s := range c.reg.Local() {
		total += s.GenTop - s.Pointer
		updated += s.Updated
	}
	if total == 0 {
		return false // nothing in the current generation to decide about
	}
	return updated*2 < total
}
