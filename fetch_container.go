package assets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/klauspost/compress/zip"
)

// FromContainer is the source metadata attached to assets fetched from a
// container-backed store.
type FromContainer struct{}

// ContainerPartialFetch adapts a single backing store — a zip archive, an
// embedded key-value database, anything addressable by path — into the byte
// supplier behind a ContainerAssetFetch.
type ContainerPartialFetch interface {
	LoadBytes(path AssetPath) ([]byte, error)
}

// PartialFetchFunc adapts a plain function to ContainerPartialFetch.
type PartialFetchFunc func(path AssetPath) ([]byte, error)

// LoadBytes calls the function.
func (f PartialFetchFunc) LoadBytes(path AssetPath) ([]byte, error) {
	return f(path)
}

// ContainerAssetFetch exposes a ContainerPartialFetch through the fetch
// contract, wrapping its bytes in a ready-to-process bundle.
type ContainerAssetFetch struct {
	partial ContainerPartialFetch
}

// NewContainerAssetFetch creates a container fetch over the given partial.
func NewContainerAssetFetch(partial ContainerPartialFetch) *ContainerAssetFetch {
	return &ContainerAssetFetch{partial: partial}
}

// LoadBytes asks the partial for the path's bytes.
func (c *ContainerAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	bytes, err := c.partial.LoadBytes(path)
	if err != nil {
		return nil, err
	}
	return NewBundle(
		&AssetBytesAreReadyToProcess{Bytes: bytes},
		&FromContainer{},
	), nil
}

// Close shuts the partial down if it owns resources.
func (c *ContainerAssetFetch) Close() error {
	if closer, ok := c.partial.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ZipPartialFetch serves asset bytes out of a zip archive. Entry names match
// the asset path's body.
type ZipPartialFetch struct {
	reader *zip.Reader
	closer io.Closer
}

// OpenZipPartialFetch opens a zip archive file as a partial fetch.
func OpenZipPartialFetch(file string) (*ZipPartialFetch, error) {
	rc, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip %q: %v", ErrFetchFailed, file, err)
	}
	return &ZipPartialFetch{reader: &rc.Reader, closer: rc}, nil
}

// NewZipPartialFetch wraps an in-memory or otherwise readable zip archive.
func NewZipPartialFetch(r io.ReaderAt, size int64) (*ZipPartialFetch, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: reading zip: %v", ErrFetchFailed, err)
	}
	return &ZipPartialFetch{reader: reader}, nil
}

// LoadBytes reads the archive entry named by the path's body.
func (z *ZipPartialFetch) LoadBytes(path AssetPath) ([]byte, error) {
	name := strings.TrimPrefix(path.Path(), "/")
	for _, file := range z.reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening zip entry %q: %v", ErrFetchFailed, name, err)
		}
		defer rc.Close()
		bytes, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: reading zip entry %q: %v", ErrFetchFailed, name, err)
		}
		return bytes, nil
	}
	return nil, fmt.Errorf("%w: zip entry %q not found", ErrFetchFailed, name)
}

// Close releases the underlying archive, if it was opened from a file.
func (z *ZipPartialFetch) Close() error {
	if z.closer != nil {
		return z.closer.Close()
	}
	return nil
}

// LevelDBPartialFetch serves asset bytes out of an embedded LevelDB store.
// Keys match the asset path's body.
type LevelDBPartialFetch struct {
	db *leveldb.DB
}

// OpenLevelDBPartialFetch opens a LevelDB directory as a partial fetch.
func OpenLevelDBPartialFetch(dir string) (*LevelDBPartialFetch, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening leveldb %q: %v", ErrFetchFailed, dir, err)
	}
	return &LevelDBPartialFetch{db: db}, nil
}

// NewLevelDBPartialFetch wraps an already opened LevelDB store. The caller
// keeps ownership of the database.
func NewLevelDBPartialFetch(db *leveldb.DB) *LevelDBPartialFetch {
	return &LevelDBPartialFetch{db: db}
}

// LoadBytes reads the value keyed by the path's body.
func (l *LevelDBPartialFetch) LoadBytes(path AssetPath) ([]byte, error) {
	bytes, err := l.db.Get([]byte(path.Path()), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%w: leveldb key %q not found", ErrFetchFailed, path.Path())
		}
		return nil, fmt.Errorf("%w: leveldb key %q: %v", ErrFetchFailed, path.Path(), err)
	}
	return bytes, nil
}
