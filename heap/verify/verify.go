// Package verify provides invariant checks over a heap registry.
//
// It is used as the collector's per-episode consistency diagnostic and
// heavily in tests to confirm that a collection left the heap in a legal
// state. A failed check indicates a defect in a collection engine, not a
// recoverable runtime condition.
//
// Validate all invariants in one call:
//
//	if err := verify.Registry(reg); err != nil {
//	    log.Fatalf("heap corrupted: %v", err)
//	}
package verify

import (
	"fmt"

	"github.com/joshuapare/gengc/heap"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Type    string         // check category, e.g. "Ordering"
	SpaceID int            // offending space, -1 if not space-specific
	Message string         // human-readable description
	Details map[string]any // additional context values
}

func (e *ValidationError) Error() string {
	if e.SpaceID >= 0 {
		return fmt.Sprintf("verify: %s: space %d: %s", e.Type, e.SpaceID, e.Message)
	}
	return fmt.Sprintf("verify: %s: %s", e.Type, e.Message)
}

// Checker adapts the package's checks to the collector's per-episode
// diagnostic hook. A failure panics: a corrupted heap is a defect, not a
// recoverable condition.
type Checker struct{}

// Check runs Registry and panics on the first violation.
func (Checker) Check(reg *heap.Registry) {
	if err := Registry(reg); err != nil {
		panic(err)
	}
}

// Registry runs every check and returns the first failure.
func Registry(reg *heap.Registry) error {
	if err := Ordering(reg); err != nil {
		return err
	}
	if err := CleanBitmaps(reg); err != nil {
		return err
	}
	return WeakBounds(reg)
}

// Ordering checks 0 <= Pointer <= GenTop <= Top for every local space.
func Ordering(reg *heap.Registry) error {
	for _, s := range reg.Local() {
		if err := s.CheckOrdering(); err != nil {
			return &ValidationError{
				Type:    "Ordering",
				SpaceID: s.ID,
				Message: err.Error(),
				Details: map[string]any{
					"pointer": s.Pointer,
					"gen_top": s.GenTop,
					"top":     s.Top,
				},
			}
		}
	}
	return nil
}

// CleanBitmaps checks that no mark bit is set in any local space. Between
// collections this must hold everywhere, including inside [0, GenTop).
func CleanBitmaps(reg *heap.Registry) error {
	for _, s := range reg.Local() {
		if !s.Bitmap.IsClear() {
			return &ValidationError{
				Type:    "CleanBitmaps",
				SpaceID: s.ID,
				Message: "mark bitmap has residual bits set",
				Details: map[string]any{
					"set_in_generation": s.Bitmap.CountRange(0, s.GenTop),
					"set_total":         s.Bitmap.CountRange(0, s.Top),
				},
			}
		}
	}
	return nil
}

// WeakBounds checks that each space's weak-reference interval is either empty
// (LowestWeak == Top, HighestWeak == 0) or lies within the space.
func WeakBounds(reg *heap.Registry) error {
	for _, s := range reg.Local() {
		if s.LowestWeak == s.Top && s.HighestWeak == 0 {
			continue // reset state
		}
		if s.HighestWeak > s.Top || s.LowestWeak > s.HighestWeak {
			return &ValidationError{
				Type:    "WeakBounds",
				SpaceID: s.ID,
				Message: "weak-reference bounds outside space",
				Details: map[string]any{
					"lowest":  s.LowestWeak,
					"highest": s.HighestWeak,
					"top":     s.Top,
				},
			}
		}
	}
	return nil
}
