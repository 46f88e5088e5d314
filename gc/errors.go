package gc

import "errors"

var (
	// ErrHeapExhausted is returned when a full collection, after the internal
	// retry loop, still cannot satisfy the allocation and the minimum slack
	// thresholds. The runtime should treat this as resource exhaustion.
	ErrHeapExhausted = errors.New("gc: heap exhausted, cannot free enough space")

	// ErrWorkersInitialized is returned when InitWorkers is called twice;
	// the worker pool is one-time process state.
	ErrWorkersInitialized = errors.New("gc: worker pool already initialized")
)
