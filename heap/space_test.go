package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSpace_NewIsEmptyAndClean checks a fresh space starts fully free with the
// generation boundary at the top.
func TestSpace_NewIsEmptyAndClean(t *testing.T) {
	s := newSpace(0, Mutable, 4096)

	assert.True(t, s.Empty())
	assert.Equal(t, Words(4096), s.Free())
	assert.Zero(t, s.Used())
	assert.Equal(t, s.Top, s.GenTop)
	assert.Equal(t, s.Top, s.Pointer)
	assert.True(t, s.Bitmap.IsClear())
	assert.NoError(t, s.CheckOrdering())
}

// TestSpace_AllocateMovesFrontierDown checks downward allocation: each grant
// is the new frontier and free space shrinks accordingly.
func TestSpace_AllocateMovesFrontierDown(t *testing.T) {
	s := newSpace(0, Mutable, 1000)

	off, ok := s.Allocate(100)
	require.True(t, ok)
	assert.Equal(t, Words(900), off)
	assert.Equal(t, Words(900), s.Free())

	off, ok = s.Allocate(900)
	require.True(t, ok)
	assert.Zero(t, off)
	assert.Zero(t, s.Free())

	_, ok = s.Allocate(1)
	assert.False(t, ok, "a full space refuses allocation")
}

// TestSpace_AllocateImmutableRefused checks the mutator can never allocate
// from an immutable space.
func TestSpace_AllocateImmutableRefused(t *testing.T) {
	s := newSpace(0, Immutable, 1000)
	_, ok := s.Allocate(1)
	assert.False(t, ok)
}

// TestSpace_CheckOrdering covers both violation directions.
func TestSpace_CheckOrdering(t *testing.T) {
	s := newSpace(3, Mutable, 1000)

	s.GenTop = 500
	assert.Error(t, s.CheckOrdering(), "pointer above gen_top")

	s.Pointer = 400
	require.NoError(t, s.CheckOrdering())

	s.GenTop = 1001
	assert.Error(t, s.CheckOrdering(), "gen_top above top")
}

// TestSpace_ResetWeakBounds checks the reset interval is the canonical empty
// one.
func TestSpace_ResetWeakBounds(t *testing.T) {
	s := newSpace(0, Mutable, 1000)
	s.LowestWeak = 10
	s.HighestWeak = 20

	s.ResetWeakBounds()
	assert.Equal(t, s.Top, s.LowestWeak)
	assert.Zero(t, s.HighestWeak)
}

// TestSpace_ResetCounters checks all four engine counters are zeroed.
func TestSpace_ResetCounters(t *testing.T) {
	s := newSpace(0, Mutable, 1000)
	s.IMarked, s.MMarked, s.Copied, s.Updated = 1, 2, 3, 4

	s.ResetCounters()
	assert.Zero(t, s.IMarked)
	assert.Zero(t, s.MMarked)
	assert.Zero(t, s.Copied)
	assert.Zero(t, s.Updated)
}

// TestKind_String covers the display names.
func TestKind_String(t *testing.T) {
	assert.Equal(t, "mutable", Mutable.String())
	assert.Equal(t, "immutable", Immutable.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
