package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gengc/gc"
	"github.com/joshuapare/gengc/heap"
	"github.com/joshuapare/gengc/heap/verify"
	"github.com/joshuapare/gengc/internal/simulate"
	"github.com/joshuapare/gengc/internal/taskfarm"
)

// noPhys disables the heap-load estimate so runs do not depend on the host.
func noPhys() (uint64, bool) { return 0, false }

// TestCollector_SimulatedWorkload drives the collector the way a mutator
// would: allocate until a request fails, collect, retry. The synthetic engines
// provide statistically realistic survival, so the run exercises minor
// collections, escalation to full, immutable overflow and heap growth
// together, with the registry verified after every episode.
func TestCollector_SimulatedWorkload(t *testing.T) {
	reg := heap.NewRegistry(0)
	_, ok := reg.NewLocalSpace(8192, heap.Mutable)
	require.True(t, ok)

	farm, err := taskfarm.New(4, 100)
	require.NoError(t, err)
	defer farm.Close()

	eng := simulate.New(42, simulate.Config{
		SurvivalPercent:  20,
		ImmutablePercent: 50,
		JitterPercent:    5,
	}, farm)
	c := gc.New(gc.Config{
		MutableSegWords:    4096,
		ImmutableSegWords:  4096,
		MutableFreeWords:   2000,
		ImmutableFreeWords: 2000,
		MutableMinFree:     500,
		ImmutableMinFree:   500,
	}, reg, gc.Engines{
		Mark:    eng,
		Weak:    eng,
		Compact: eng,
		Update:  eng,
	})
	c.SetPhysicalMemory(noPhys)

	const request = 64
	for i := 0; i < 200; i++ {
		if simulate.Allocate(reg, request) {
			continue
		}
		require.NoError(t, c.RunCollection(false, request),
			"collection %d must recover with an unlimited budget", i)
		require.NoError(t, verify.Registry(reg), "after collection %d", i)
		require.True(t, simulate.Allocate(reg, request),
			"a successful collection guarantees the triggering request fits")
	}

	st := c.Stats()
	assert.NotZero(t, st.Episodes, "the workload must trigger collections")
	assert.NotZero(t, st.WordsMarked, "survivors must have been marked")
	assert.NotZero(t, st.MinorEpisodes)
}

// TestCollector_PeriodicFullCollections mixes caller-forced full collections
// into the workload, the way a runtime triggers them from a timer or an
// explicit request, and checks the generation bookkeeping always lands in a
// consistent resting state.
func TestCollector_PeriodicFullCollections(t *testing.T) {
	reg := heap.NewRegistry(0)
	_, ok := reg.NewLocalSpace(16384, heap.Mutable)
	require.True(t, ok)

	eng := simulate.New(7, simulate.Config{
		SurvivalPercent:  30,
		ImmutablePercent: 40,
	}, nil)
	c := gc.New(gc.Config{
		MutableSegWords:    8192,
		ImmutableSegWords:  8192,
		MutableFreeWords:   4000,
		ImmutableFreeWords: 4000,
		MutableMinFree:     1000,
		ImmutableMinFree:   1000,
	}, reg, gc.Engines{Mark: eng, Weak: eng, Compact: eng, Update: eng})
	c.SetPhysicalMemory(noPhys)

	for i := 0; i < 10; i++ {
		forceFull := i%3 == 2
		require.NoError(t, c.RunCollection(forceFull, 128))
		require.NoError(t, verify.Registry(reg), "after collection %d", i)

		// Fill some of the reclaimed space before the next round.
		simulate.Allocate(reg, 2000)
	}

	st := c.Stats()
	assert.GreaterOrEqual(t, st.FullEpisodes, uint64(3),
		"every third collection was forced full")
	assert.Equal(t, st.Episodes, st.FullEpisodes+st.MinorEpisodes)
}
