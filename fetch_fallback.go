package assets

// FallbackAssetFetch retries failed loads against a configured list of
// fallback paths. Only fallbacks sharing the requested path's protocol are
// tried; the first that loads wins. The primary failure is returned when
// every fallback fails too.
type FallbackAssetFetch struct {
	fetch AssetFetch
	paths []AssetPath
}

// NewFallbackAssetFetch creates a fallback wrapper over the inner engine.
func NewFallbackAssetFetch(fetch AssetFetch) *FallbackAssetFetch {
	return &FallbackAssetFetch{fetch: fetch}
}

// Path adds a fallback asset path and returns the wrapper for chaining.
func (f *FallbackAssetFetch) Path(path string) *FallbackAssetFetch {
	f.paths = append(f.paths, NewAssetPath(path))
	return f
}

// LoadBytes tries the requested path, then the matching fallbacks.
func (f *FallbackAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	bundle, err := f.fetch.LoadBytes(path)
	if err == nil {
		return bundle, nil
	}
	for _, fallback := range f.paths {
		if fallback.Protocol() != path.Protocol() {
			continue
		}
		if bundle, fallbackErr := f.fetch.LoadBytes(fallback); fallbackErr == nil {
			return bundle, nil
		}
	}
	return nil, err
}

// Maintain forwards to the inner engine.
func (f *FallbackAssetFetch) Maintain(storage *World) error {
	return maintainFetch(f.fetch, storage)
}

// Close shuts the inner engine down.
func (f *FallbackAssetFetch) Close() error {
	return closeFetch(f.fetch)
}
