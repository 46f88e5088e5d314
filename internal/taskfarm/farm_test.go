package taskfarm

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_RejectsZeroThreads checks the fixed-size pool refuses to start with
// no workers.
func TestNew_RejectsZeroThreads(t *testing.T) {
	f, err := New(0, 10)
	assert.ErrorIs(t, err, ErrNoThreads)
	assert.Nil(t, f)
}

// TestFarm_RunsEverySubmittedTask checks no task is lost under a queue much
// smaller than the task count, so Submit's blocking backpressure is exercised.
func TestFarm_RunsEverySubmittedTask(t *testing.T) {
	f, err := New(4, 2)
	require.NoError(t, err)
	defer f.Close()

	var done atomic.Int64
	for i := 0; i < 1000; i++ {
		f.Submit(func() { done.Add(1) })
	}
	f.Wait()

	assert.Equal(t, int64(1000), done.Load())
	assert.Equal(t, uint(4), f.Threads())
}

// TestFarm_WaitIsAPhaseBarrier checks Wait observes the side effects of every
// task submitted before it, which is what the engines rely on between phases.
func TestFarm_WaitIsAPhaseBarrier(t *testing.T) {
	f, err := New(3, 8)
	require.NoError(t, err)
	defer f.Close()

	results := make([]int, 100)
	for phase := 0; phase < 5; phase++ {
		for i := range results {
			i := i
			f.Submit(func() { results[i]++ })
		}
		f.Wait()
		for i, v := range results {
			require.Equal(t, phase+1, v, "slot %d after phase %d", i, phase)
		}
	}
}

// TestFarm_SubmitNilPanics checks the defensive nil check.
func TestFarm_SubmitNilPanics(t *testing.T) {
	f, err := New(1, 1)
	require.NoError(t, err)
	defer f.Close()

	assert.Panics(t, func() { f.Submit(nil) })
}

// TestFarm_CloseDrainsAndIsIdempotent checks Close runs the queued backlog to
// completion and can be called repeatedly, including concurrently.
func TestFarm_CloseDrainsAndIsIdempotent(t *testing.T) {
	f, err := New(2, 50)
	require.NoError(t, err)

	var done atomic.Int64
	for i := 0; i < 50; i++ {
		f.Submit(func() { done.Add(1) })
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), done.Load(), "queued tasks run before shutdown")
}
