package assets

import "fmt"

// FromCollection is the source metadata attached to assets fetched from an
// in-memory collection.
type FromCollection struct{}

// CollectionAssetFetch is a plain path-to-bytes mapping that satisfies the
// fetch contract directly. Useful for embedded or generated data:
//
//	db.WithFetch(assets.CollectionAssetFetch{
//	    "config.txt": []byte("fullscreen"),
//	})
//
// Keys match the asset path's body, without protocol or meta.
type CollectionAssetFetch map[string][]byte

// LoadBytes looks the path's body up in the mapping.
func (c CollectionAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	bytes, ok := c[path.Path()]
	if !ok {
		return nil, fmt.Errorf("%w: missing collection key %q", ErrFetchFailed, path.Path())
	}
	copied := make([]byte, len(bytes))
	copy(copied, bytes)
	return NewBundle(
		&AssetBytesAreReadyToProcess{Bytes: copied},
		&FromCollection{},
	), nil
}
