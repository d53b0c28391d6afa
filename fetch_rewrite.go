package assets

// RewriteAssetFetch applies a path rewrite before delegating to an inner
// engine. The entity's stored AssetPath stays the requested path; only the
// request seen by the inner engine changes. Useful for localization or
// versioned asset redirection:
//
//	assets.NewRewriteAssetFetch(inner, func(path assets.AssetPath) (assets.AssetPath, error) {
//	    return assets.AssetPathFromParts(path.Protocol(), "en-US/"+path.Path(), path.Meta()), nil
//	})
type RewriteAssetFetch struct {
	fetch   AssetFetch
	rewrite func(path AssetPath) (AssetPath, error)
}

// NewRewriteAssetFetch creates a rewrite wrapper over the inner engine.
func NewRewriteAssetFetch(fetch AssetFetch, rewrite func(path AssetPath) (AssetPath, error)) *RewriteAssetFetch {
	return &RewriteAssetFetch{fetch: fetch, rewrite: rewrite}
}

// LoadBytes rewrites the path and delegates.
func (r *RewriteAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	rewritten, err := r.rewrite(path)
	if err != nil {
		return nil, err
	}
	return r.fetch.LoadBytes(rewritten)
}

// Maintain forwards to the inner engine.
func (r *RewriteAssetFetch) Maintain(storage *World) error {
	return maintainFetch(r.fetch, storage)
}

// Close shuts the inner engine down.
func (r *RewriteAssetFetch) Close() error {
	return closeFetch(r.fetch)
}
