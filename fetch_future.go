package assets

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FutureProducer is a user-supplied asynchronous byte producer. It runs on
// its own goroutine; the context is cancelled when the wrapper closes.
type FutureProducer func(ctx context.Context, path AssetPath) (*Bundle, error)

// FutureAssetFetch binds fetching to a user-supplied async function instead
// of an inner engine. Each LoadBytes spawns the producer and returns an
// AssetAwaitsDeferredJob marker; Maintain drains completions the same way
// DeferredAssetFetch does.
type FutureAssetFetch struct {
	producer  FutureProducer
	ctx       context.Context
	cancel    context.CancelFunc
	completed completionQueue
	wg        sync.WaitGroup
}

// NewFutureAssetFetch creates a future wrapper over the producer.
func NewFutureAssetFetch(producer FutureProducer) *FutureAssetFetch {
	ctx, cancel := context.WithCancel(context.Background())
	return &FutureAssetFetch{
		producer: producer,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// LoadBytes starts the producer and returns a deferred-job marker bundle.
func (f *FutureAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	job := uuid.New()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		bundle, err := f.producer(f.ctx, path)
		f.completed.push(deferredResult{
			job:    job,
			path:   path,
			bundle: bundle,
			err:    err,
		})
	}()
	return NewBundle(&AssetAwaitsDeferredJob{Job: job}), nil
}

// Maintain installs completed producer results.
func (f *FutureAssetFetch) Maintain(storage *World) error {
	for _, result := range f.completed.drain() {
		installDeferredResult(storage, result)
	}
	return nil
}

// Close cancels outstanding producers and waits for them to return.
func (f *FutureAssetFetch) Close() error {
	f.cancel()
	f.wg.Wait()
	return nil
}
