package engine

import (
	"fmt"
	"sync"

	"voxcraft/internal/meshing"
	"voxcraft/internal/world"
)

// result carries a finished task back to the scheduler. Tasks are
// fire-and-forget: nothing cancels them, the installer just discards
// results that have gone stale.
type result struct {
	task task

	// generation
	chunk *world.Chunk
	err   error

	// meshing
	mesh    *meshing.Mesh
	version uint64
	missing [6]bool

	// skipped marks a task whose chunk vanished before it ran.
	skipped bool
}

// workerPool runs generation and meshing tasks on a fixed set of
// background goroutines. Tasks run to completion; the only shared
// state they touch is the edit overlay (read, plus the one-time
// hydration of a region's persisted edits) and the store's snapshot
// lock.
type workerPool struct {
	jobs    chan task
	results chan result
	wg      sync.WaitGroup
}

const (
	jobQueueSize    = 256
	resultQueueSize = 4096
)

func newWorkerPool(workers int, run func(task) result) *workerPool {
	p := &workerPool{
		jobs:    make(chan task, jobQueueSize),
		results: make(chan result, resultQueueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for t := range p.jobs {
				p.results <- runSafe(run, t)
			}
		}()
	}
	return p
}

// runSafe converts a panicking task into an error result. Failed
// generations are retried a bounded number of times; failed meshes are
// dropped.
func runSafe(run func(task) result, t task) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res = result{task: t, err: fmt.Errorf("task panicked: %v", r)}
		}
	}()
	return run(t)
}

// trySubmit hands a task to the pool without blocking the tick.
func (p *workerPool) trySubmit(t task) bool {
	select {
	case p.jobs <- t:
		return true
	default:
		return false
	}
}

// close stops the workers after the queued jobs finish.
func (p *workerPool) close() {
	close(p.jobs)
	p.wg.Wait()
}
