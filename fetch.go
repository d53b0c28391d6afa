package assets

import (
	"io"

	"github.com/google/uuid"
)

// AssetAwaitsResolution marks an asset that still needs fetching. The
// database's resolution pass picks these up each maintenance tick.
type AssetAwaitsResolution struct{}

// AssetAwaitsDeferredJob marks an asset whose fetch runs on a background
// job. The owning fetch engine promotes the asset when the job completes.
type AssetAwaitsDeferredJob struct {
	// Job is the token of the outstanding background job.
	Job uuid.UUID
}

// AssetBytesAreReadyToProcess carries raw fetched bytes awaiting a protocol.
type AssetBytesAreReadyToProcess struct {
	Bytes []byte
}

// AssetFailed marks an asset whose progression failed. The bytes component
// is retained alongside it for diagnostic inspection until the next reload.
type AssetFailed struct {
	Err error
}

// AssetFetch supplies raw bytes plus source metadata for asset paths.
//
// LoadBytes returns a bundle that must include either
// AssetBytesAreReadyToProcess (synchronous success) or
// AssetAwaitsDeferredJob (asynchronous handover), along with any number of
// source-metadata components. Engines wrapped by Deferred must be safe to
// call from any goroutine.
type AssetFetch interface {
	LoadBytes(path AssetPath) (*Bundle, error)
}

// AssetFetchMaintainer is implemented by fetch engines with outstanding
// work to finalize. The database calls Maintain on every stacked engine at
// the start of each tick; engines promote deferred assets or mark failures
// directly in the storage.
type AssetFetchMaintainer interface {
	Maintain(storage *World) error
}

// FetchFunc adapts a plain function to AssetFetch.
type FetchFunc func(path AssetPath) (*Bundle, error)

// LoadBytes calls the function.
func (f FetchFunc) LoadBytes(path AssetPath) (*Bundle, error) {
	return f(path)
}

// maintainFetch runs the engine's Maintain hook if it has one.
func maintainFetch(fetch AssetFetch, storage *World) error {
	if m, ok := fetch.(AssetFetchMaintainer); ok {
		return m.Maintain(storage)
	}
	return nil
}

// closeFetch shuts the engine down if it owns resources.
func closeFetch(fetch AssetFetch) error {
	if c, ok := fetch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
