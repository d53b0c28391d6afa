package assets

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// deferredJob is one queued background fetch.
type deferredJob struct {
	job  uuid.UUID
	path AssetPath
}

// deferredResult is one completed background fetch.
type deferredResult struct {
	job    uuid.UUID
	path   AssetPath
	bundle *Bundle
	err    error
}

// completionQueue is the thread-safe queue workers publish results into.
// The database observes results only when a Maintain call drains it, never
// mid-tick.
type completionQueue struct {
	mu      sync.Mutex
	results []deferredResult
}

func (q *completionQueue) push(result deferredResult) {
	q.mu.Lock()
	q.results = append(q.results, result)
	q.mu.Unlock()
}

func (q *completionQueue) drain() []deferredResult {
	q.mu.Lock()
	results := q.results
	q.results = nil
	q.mu.Unlock()
	return results
}

// installDeferredResult writes one completed job back into the storage.
// Results for despawned entities and stale job tokens are discarded.
func installDeferredResult(storage *World, result deferredResult) {
	entity, ok := storage.FindByPath(result.path)
	if !ok {
		return
	}
	waiting, err := Get[AssetAwaitsDeferredJob](storage, entity)
	if err != nil || waiting.Job != result.job {
		return
	}
	_ = Remove[AssetAwaitsDeferredJob](storage, entity)
	if result.err != nil {
		_ = Insert(storage, entity, &AssetFailed{
			Err: fmt.Errorf("%w: deferred job for %q: %v", ErrFetchFailed, result.path.String(), result.err),
		})
		return
	}
	_ = storage.InsertBundle(entity, result.bundle)
}

// DeferredAssetFetch moves fetching onto a worker pool. LoadBytes submits
// the request and immediately returns an AssetAwaitsDeferredJob marker;
// Maintain drains completed jobs, installing bytes or a failure. Completion
// order is arbitrary — there is no global FIFO guarantee.
//
// The inner engine is called from worker goroutines and must be safe for
// concurrent use. Close stops the pool and waits for in-flight jobs.
type DeferredAssetFetch struct {
	fetch     AssetFetch
	jobs      chan deferredJob
	completed completionQueue
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDeferredAssetFetch creates a deferred wrapper running the given number
// of workers; workers <= 0 uses the number of CPUs.
func NewDeferredAssetFetch(fetch AssetFetch, workers int) *DeferredAssetFetch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	d := &DeferredAssetFetch{
		fetch: fetch,
		jobs:  make(chan deferredJob, 64),
	}
	d.wg.Add(workers)
	for range workers {
		go d.worker()
	}
	return d
}

func (d *DeferredAssetFetch) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		bundle, err := d.fetch.LoadBytes(job.path)
		d.completed.push(deferredResult{
			job:    job.job,
			path:   job.path,
			bundle: bundle,
			err:    err,
		})
	}
}

// LoadBytes queues the fetch and returns a deferred-job marker bundle.
func (d *DeferredAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	job := uuid.New()
	d.jobs <- deferredJob{job: job, path: path}
	return NewBundle(&AssetAwaitsDeferredJob{Job: job}), nil
}

// Maintain installs completed jobs and forwards to the inner engine.
func (d *DeferredAssetFetch) Maintain(storage *World) error {
	for _, result := range d.completed.drain() {
		installDeferredResult(storage, result)
	}
	return maintainFetch(d.fetch, storage)
}

// Close stops the worker pool, waits for in-flight jobs and shuts the inner
// engine down. Results still queued are dropped.
func (d *DeferredAssetFetch) Close() error {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
	return closeFetch(d.fetch)
}
