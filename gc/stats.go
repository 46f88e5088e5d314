package gc

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/gengc/heap"
)

// Stats accumulates collection statistics across episodes. Counters are
// cumulative for the lifetime of the Collector.
type Stats struct {
	Episodes      uint64 // collection episodes, retries included
	FullEpisodes  uint64 // episodes that ran as full collections
	MinorEpisodes uint64 // episodes that ran as minor collections
	Retries       uint64 // immediate internal re-entries (no return to caller)

	WordsMarked       heap.Words // words marked across all episodes
	WordsCopied       heap.Words // words relocated by compaction
	WordsUpdated      heap.Words // words pointer-fixed by the update phase
	ImmutableOverflow heap.Words // immutable words that stayed mutable-resident

	GrowRequests uint64     // successful space growths
	GrowWords    heap.Words // words added by growth
	ShrinkWords  heap.Words // words removed by deleting empty spaces

	MarkTime    time.Duration // cumulative mark-phase time
	CompactTime time.Duration // cumulative compact-phase time
	UpdateTime  time.Duration // cumulative update-phase time
	TotalTime   time.Duration // cumulative RunCollection wall time
}

// Report renders the statistics as a human-readable block, with grouped
// integers for the large word counts.
func (st Stats) Report() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "collections:       %d (%d full, %d minor, %d retries)\n",
		st.Episodes, st.FullEpisodes, st.MinorEpisodes, st.Retries)
	p.Fprintf(&b, "words marked:      %d\n", st.WordsMarked)
	p.Fprintf(&b, "words copied:      %d\n", st.WordsCopied)
	p.Fprintf(&b, "words updated:     %d\n", st.WordsUpdated)
	p.Fprintf(&b, "immutable overflow: %d\n", st.ImmutableOverflow)
	p.Fprintf(&b, "heap grown:        %d words in %d segments\n",
		st.GrowWords, st.GrowRequests)
	p.Fprintf(&b, "heap shrunk:       %d words\n", st.ShrinkWords)
	p.Fprintf(&b, "phase times:       mark %v, compact %v, update %v (total %v)\n",
		st.MarkTime.Round(time.Microsecond),
		st.CompactTime.Round(time.Microsecond),
		st.UpdateTime.Round(time.Microsecond),
		st.TotalTime.Round(time.Microsecond))

	return b.String()
}
