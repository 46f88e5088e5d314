// Package taskfarm provides the bounded worker pool the collection engines
// use to parallelize work across heap spaces.
//
// The farm is created once at startup with a fixed thread count and queue
// depth; no workers are created mid-collection. Engines submit one task per
// heap space (or per chunk of a large space) and call Wait between phases so
// that mark, compact and update never overlap.
package taskfarm

import (
	"errors"
	"sync"
)

// ErrNoThreads is returned when a farm is created with zero worker threads.
var ErrNoThreads = errors.New("taskfarm: thread count must be at least 1")

// Farm is a fixed-size worker pool with a bounded work queue. Submit blocks
// when the queue is full, which bounds the memory held by queued tasks.
type Farm struct {
	tasks   chan func()
	workers sync.WaitGroup
	pending sync.WaitGroup

	closeOnce sync.Once
	threads   uint
}

// New starts a farm with the given number of worker goroutines and queue
// depth. depth values below 1 are raised to 1.
func New(threads uint, depth int) (*Farm, error) {
	if threads == 0 {
		return nil, ErrNoThreads
	}
	if depth < 1 {
		depth = 1
	}
	f := &Farm{
		tasks:   make(chan func(), depth),
		threads: threads,
	}
	for i := uint(0); i < threads; i++ {
		f.workers.Add(1)
		go f.run()
	}
	return f, nil
}

func (f *Farm) run() {
	defer f.workers.Done()
	for task := range f.tasks {
		task()
		f.pending.Done()
	}
}

// Threads returns the fixed worker count.
func (f *Farm) Threads() uint { return f.threads }

// Submit queues a task, blocking while the queue is full. Submitting to a
// closed farm panics, as does submitting a nil task.
func (f *Farm) Submit(task func()) {
	if task == nil {
		panic("taskfarm: nil task")
	}
	f.pending.Add(1)
	f.tasks <- task
}

// Wait blocks until every submitted task has finished. It is the phase
// barrier: engines call it before the orchestrator moves on.
func (f *Farm) Wait() {
	f.pending.Wait()
}

// Close drains the queue and stops the workers. Safe to call more than once.
func (f *Farm) Close() {
	f.closeOnce.Do(func() {
		close(f.tasks)
	})
	f.workers.Wait()
}
