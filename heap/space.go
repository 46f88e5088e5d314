package heap

import (
	"fmt"

	"github.com/joshuapare/gengc/internal/bitmap"
)

// Words counts heap words. All sizes, offsets and counters in this module are
// word-granular.
type Words = uint64

const (
	// WordBytes is the size of one heap word in bytes.
	WordBytes = 8

	// BitmapUnit is the allocation-rounding unit: growth requests are rounded
	// up to whole multiples of this so the mark bitmap never covers a partial
	// backing word.
	BitmapUnit = bitmap.WordBits
)

// Kind distinguishes mutable from immutable local spaces.
type Kind uint8

const (
	// Mutable spaces receive new allocations and are never compacted into.
	Mutable Kind = iota
	// Immutable spaces hold data the compactor has moved out of the mutable
	// area.
	Immutable
)

func (k Kind) String() string {
	switch k {
	case Mutable:
		return "mutable"
	case Immutable:
		return "immutable"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Space is one contiguous local heap region. Offsets are space-relative words;
// the valid range is [0, Top). Allocation proceeds downward from Top, so
// [0, Pointer) is the free part of the space.
//
// The collection engines populate the counters during an episode; the
// orchestrator resets them at episode start and reads them for its accounting
// identities.
type Space struct {
	ID   int  // registry-assigned, stable for the space's lifetime
	Kind Kind // fixed at creation

	Top       Words // size of the space; offsets run [0, Top)
	Pointer   Words // allocation frontier; [0, Pointer) is free
	GenBottom Words // frontier recorded at collection start (low-water mark)
	GenTop    Words // boundary between current generation and older data

	// Bitmap holds one mark bit per word over [0, Top). Only bits below
	// GenTop may ever be set.
	Bitmap *bitmap.Bitmap

	// Counters populated by the mark/compact/update engines.
	IMarked Words // words marked as immutable data
	MMarked Words // words marked as mutable data
	Copied  Words // words relocated into this space during compaction
	Updated Words // words whose pointers were fixed up

	// Weak-reference bounds, reset to the empty interval (LowestWeak = Top,
	// HighestWeak = 0) at the start of every collection.
	LowestWeak  Words
	HighestWeak Words
}

// newSpace builds an empty space: Pointer == GenTop == Top, clean bitmap.
func newSpace(id int, kind Kind, words Words) *Space {
	return &Space{
		ID:        id,
		Kind:      kind,
		Top:       words,
		Pointer:   words,
		GenBottom: words,
		GenTop:    words,
		Bitmap:    bitmap.New(words),
	}
}

// Size returns the total size of the space in words.
func (s *Space) Size() Words { return s.Top }

// Free returns the words available for allocation, [0, Pointer).
func (s *Space) Free() Words { return s.Pointer }

// Used returns the words currently occupied, [Pointer, Top).
func (s *Space) Used() Words { return s.Top - s.Pointer }

// Empty reports whether nothing is allocated in the space.
func (s *Space) Empty() bool { return s.Pointer == s.Top }

// CheckOrdering validates the space ordering invariant
// 0 <= Pointer <= GenTop <= Top.
func (s *Space) CheckOrdering() error {
	if s.Pointer > s.GenTop {
		return fmt.Errorf("space %d (%s): pointer %d above gen_top %d",
			s.ID, s.Kind, s.Pointer, s.GenTop)
	}
	if s.GenTop > s.Top {
		return fmt.Errorf("space %d (%s): gen_top %d above top %d",
			s.ID, s.Kind, s.GenTop, s.Top)
	}
	return nil
}

// ResetWeakBounds restores the weak-reference bounds to the empty interval.
func (s *Space) ResetWeakBounds() {
	s.LowestWeak = s.Top
	s.HighestWeak = 0
}

// ResetCounters zeroes the per-episode engine counters.
func (s *Space) ResetCounters() {
	s.IMarked = 0
	s.MMarked = 0
	s.Copied = 0
	s.Updated = 0
}

// Allocate takes words off the bottom of the free area and returns the offset
// of the new allocation, or false if the space cannot hold it. The mutator
// side of the runtime calls this; the collector only observes the frontier.
func (s *Space) Allocate(words Words) (Words, bool) {
	if s.Kind != Mutable || words > s.Pointer {
		return 0, false
	}
	s.Pointer -= words
	return s.Pointer, true
}

// PermanentSpace is a read-mostly region outside the generational scheme,
// e.g. preloaded code and data. The collector only touches its weak bounds.
type PermanentSpace struct {
	Top Words // size in words

	LowestWeak  Words
	HighestWeak Words
}

// ResetWeakBounds restores the weak-reference bounds to the empty interval.
func (p *PermanentSpace) ResetWeakBounds() {
	p.LowestWeak = p.Top
	p.HighestWeak = 0
}
