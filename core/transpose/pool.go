package transpose

import (
	"runtime"
	"sync"
)

// workerPool distributes independent jobs across a fixed set of
// workers and collects results. Per-key renders share nothing but the
// immutable source document, so no synchronization beyond collection
// is needed.
type workerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// newWorkerPool creates a pool with the given number of workers.
// If numWorkers is 0 or negative, it defaults to the CPU count.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func newWorkerPool[Job any, Result any](numWorkers, numJobs int) *workerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numJobs > 0 && numJobs < numWorkers {
		numWorkers = numJobs
	}

	return &workerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// start begins the workers with the provided worker function.
func (p *workerPool[Job, Result]) start(workerFn func(Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(job)
			}
		}()
	}
}

// submit adds a job to the pool's queue.
func (p *workerPool[Job, Result]) submit(job Job) {
	p.jobs <- job
}

// close closes the job channel and closes the results channel once all
// workers have drained.
func (p *workerPool[Job, Result]) close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}
