package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gengc/heap"
	"github.com/joshuapare/gengc/heap/verify"
	"github.com/joshuapare/gengc/internal/testutil"
)

// Function adapters so tests can fake individual engines with closures.
type markFn func(*heap.Registry, bool)

func (f markFn) Mark(r *heap.Registry, full bool) { f(r, full) }

type weakFn func(*heap.Registry)

func (f weakFn) SweepWeak(r *heap.Registry) { f(r) }

type compactFn func(*heap.Registry) heap.Words

func (f compactFn) Compact(r *heap.Registry) heap.Words { return f(r) }

type updateFn func(*heap.Registry)

func (f updateFn) Update(r *heap.Registry) { f(r) }

// noopEngines marks nothing and reclaims every generation window: the
// behavior of correct engines over a heap with no survivors.
func noopEngines() Engines {
	return Engines{
		Mark: markFn(func(*heap.Registry, bool) {}),
		Weak: weakFn(func(*heap.Registry) {}),
		Compact: compactFn(func(r *heap.Registry) heap.Words {
			for _, s := range r.Local() {
				s.Pointer = s.GenTop
			}
			return 0
		}),
		Update: updateFn(func(*heap.Registry) {}),
	}
}

// noPhysMem disables the heap-load estimate for deterministic runs.
func noPhysMem() (uint64, bool) { return 0, false }

// TestRunCollection_MinorNoSurvivors checks the baseline scenario: a minor
// collection with no survivors must leave the triggering allocation plus the
// configured slack free, without escalating to full.
func TestRunCollection_MinorNoSurvivors(t *testing.T) {
	reg := heap.NewRegistry(0)
	s := testutil.NewSpace(t, reg, heap.Mutable, 4096)
	testutil.Fill(t, s, 1100) // garbage that will not survive

	c := New(Config{
		MutableSegWords:  4096,
		MutableFreeWords: 2000,
		MutableMinFree:   2000,
	}, reg, noopEngines())
	c.SetPhysicalMemory(noPhysMem)

	err := c.RunCollection(false, 1000)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.Free(), heap.Words(3000),
		"allocation plus slack must be free after the collection")
	assert.False(t, c.FullScheduled(), "a satisfied minor collection must not escalate")
	assert.Equal(t, uint64(1), c.Stats().MinorEpisodes)
	assert.Zero(t, c.Stats().FullEpisodes)
	assert.NoError(t, verify.Registry(reg))
}

// TestRunCollection_OverflowKeepsGenerationNew checks that a full collection
// with immutable overflow and a low update ratio keeps the survivors "new":
// the generation age increments and gen_top is not advanced to the frontier.
func TestRunCollection_OverflowKeepsGenerationNew(t *testing.T) {
	reg := heap.NewRegistry(0)
	mut := testutil.NewSpace(t, reg, heap.Mutable, 10000)
	imm := testutil.NewSpace(t, reg, heap.Immutable, 8192)
	testutil.Fill(t, mut, 4000)

	eng := Engines{
		Mark: markFn(func(r *heap.Registry, full bool) {
			require.True(t, full)
			mut.IMarked = 1500
			mut.MMarked = 200
		}),
		Weak: weakFn(func(*heap.Registry) {}),
		Compact: compactFn(func(r *heap.Registry) heap.Words {
			// Move 1000 immutable words out; 500 find no hole and stay
			// behind. The frontier cannot rise: the unmoved large object
			// pins it, leaving the window full of holes.
			imm.Pointer -= 1000
			imm.Copied = 1000
			imm.IMarked = 1000
			mut.IMarked = 500
			return 500
		}),
		Update: updateFn(func(*heap.Registry) {
			imm.Updated = 1000       // iMarked - overflow
			mut.Updated = 200 + 500  // mMarked + overflow
		}),
	}

	c := New(Config{
		MutableSegWords:    4096,
		ImmutableSegWords:  4096,
		MutableFreeWords:   2000,
		ImmutableFreeWords: 2000,
		DisableGrowth:      true,
	}, reg, eng)
	c.SetPhysicalMemory(noPhysMem)

	err := c.RunCollection(true, 1000)
	require.NoError(t, err)

	assert.Equal(t, uint(1), c.Generation(), "generation age must increment")
	assert.Equal(t, mut.Top, mut.GenTop,
		"gen_top must not advance: survivors stay in the current generation")
	assert.True(t, c.FullScheduled(),
		"a recollected full collection forces the next one full too")
	assert.NoError(t, verify.CleanBitmaps(reg))
}

// TestRunCollection_HeapLoadForcesImmediateFull checks that when escalation
// was just scheduled and the heap-load estimate exceeds the threshold, the
// collector re-enters setup immediately instead of returning to the caller.
func TestRunCollection_HeapLoadForcesImmediateFull(t *testing.T) {
	reg := heap.NewRegistry(0)
	testutil.NewSpace(t, reg, heap.Mutable, 4096)

	c := New(Config{
		MutableSegWords:    4096,
		ImmutableSegWords:  4096,
		MutableFreeWords:   1000,
		ImmutableFreeWords: 500,
		MutableMinFree:     5000, // minor collections can never satisfy this
	}, reg, noopEngines())
	// Machine with barely more memory than the heap: load is way past 80%.
	c.SetPhysicalMemory(func() (uint64, bool) {
		return 4200 * heap.WordBytes, true
	})

	err := c.RunCollection(false, 100)
	require.NoError(t, err)

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Episodes, "expected an immediate re-entry")
	assert.Equal(t, uint64(1), st.MinorEpisodes)
	assert.Equal(t, uint64(1), st.FullEpisodes, "the re-entry must run full")
	assert.Equal(t, uint64(1), st.Retries)
	assert.False(t, c.FullScheduled(), "the carried flag is consumed by the re-entry")
}

// TestRunCollection_GrowthFailureIsSoft checks that total allocator
// exhaustion during growth never crashes a collection: the outcome is decided
// purely by fullness.
func TestRunCollection_GrowthFailureIsSoft(t *testing.T) {
	t.Run("hard failure when slack unsatisfiable", func(t *testing.T) {
		reg := heap.NewRegistry(8192) // no room to grow at all
		testutil.NewSpace(t, reg, heap.Mutable, 8192)

		c := New(Config{
			MutableSegWords:  4096,
			MutableFreeWords: 2000,
			MutableMinFree:   1000,
		}, reg, noopEngines())
		c.SetPhysicalMemory(noPhysMem)

		// 10,000 words can never fit: every growth attempt is refused and
		// halves below the floor, and the full-collection escalation still
		// comes up short at minor thresholds.
		err := c.RunCollection(false, 10000)
		require.ErrorIs(t, err, ErrHeapExhausted)
		assert.NoError(t, verify.CleanBitmaps(reg),
			"bitmaps must be clean even after a failed episode")
		assert.NoError(t, verify.Ordering(reg))
	})

	t.Run("success when existing space suffices", func(t *testing.T) {
		reg := heap.NewRegistry(8192)
		s := testutil.NewSpace(t, reg, heap.Mutable, 8192)
		testutil.Fill(t, s, 3000)

		c := New(Config{
			MutableSegWords:  4096,
			MutableFreeWords: 2000,
			MutableMinFree:   1000,
		}, reg, noopEngines())
		c.SetPhysicalMemory(noPhysMem)

		require.NoError(t, c.RunCollection(false, 1000))
		assert.NoError(t, verify.Registry(reg))
	})
}

// TestRunCollection_AuditPanicsOnBadEngine checks that accounting violations
// by an engine are treated as fatal diagnostics, not error returns.
func TestRunCollection_AuditPanicsOnBadEngine(t *testing.T) {
	reg := heap.NewRegistry(0)
	mut := testutil.NewSpace(t, reg, heap.Mutable, 4096)
	testutil.Fill(t, mut, 500)

	eng := noopEngines()
	eng.Compact = compactFn(func(r *heap.Registry) heap.Words {
		mut.Copied = 7 // mutable objects must never be relocated
		mut.Pointer = mut.GenTop
		return 0
	})

	c := New(Config{MutableSegWords: 4096, MutableFreeWords: 100}, reg, eng)
	c.SetPhysicalMemory(noPhysMem)

	assert.Panics(t, func() {
		_ = c.RunCollection(false, 100)
	})
}

// TestRunCollection_ConsistencyCheckerRuns checks the diagnostic hook fires
// once per episode, after the update phase.
func TestRunCollection_ConsistencyCheckerRuns(t *testing.T) {
	reg := heap.NewRegistry(0)
	testutil.NewSpace(t, reg, heap.Mutable, 4096)

	calls := 0
	eng := noopEngines()
	eng.Check = checkFn(func(r *heap.Registry) {
		calls++
		assert.NoError(t, verify.CleanBitmaps(r),
			"bitmaps are already clean when the checker runs")
	})

	c := New(Config{MutableSegWords: 4096, MutableFreeWords: 100}, reg, eng)
	c.SetPhysicalMemory(noPhysMem)

	require.NoError(t, c.RunCollection(false, 100))
	assert.Equal(t, 1, calls)
}

type checkFn func(*heap.Registry)

func (f checkFn) Check(r *heap.Registry) { f(r) }

// TestInitWorkers_OnceOnly checks the worker pool is one-time state.
func TestInitWorkers_OnceOnly(t *testing.T) {
	c := New(Config{}, heap.NewRegistry(0), noopEngines())

	require.NoError(t, c.InitWorkers(4))
	require.NotNil(t, c.Farm())
	assert.Equal(t, uint(4), c.Farm().Threads())

	assert.ErrorIs(t, c.InitWorkers(2), ErrWorkersInitialized)
	assert.Panics(t, func() {
		c2 := New(Config{}, heap.NewRegistry(0), noopEngines())
		c2.MustInitWorkers(0)
	})

	c.Farm().Close()
}
