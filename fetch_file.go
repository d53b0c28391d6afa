package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FromFile is the source metadata attached to assets fetched from the
// filesystem.
type FromFile struct {
	// Path is the resolved filesystem path the bytes were read from.
	Path string
	// Size is the file size at load time.
	Size int64
	// ModTime is the file modification time at load time.
	ModTime time.Time
}

// loadFileBundle reads a file into a bytes-ready bundle with FromFile
// metadata. The raw bytes are returned alongside for callers that digest
// them.
func loadFileBundle(file string) (*Bundle, []byte, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %q: %v", ErrFetchFailed, file, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stat %q: %v", ErrFetchFailed, file, err)
	}
	bundle := NewBundle(
		&AssetBytesAreReadyToProcess{Bytes: bytes},
		&FromFile{Path: file, Size: info.Size(), ModTime: info.ModTime()},
	)
	return bundle, bytes, nil
}

// FileAssetFetch loads asset bytes from the filesystem under a root
// directory. The asset path's body is interpreted as a slash-separated
// path relative to Root.
type FileAssetFetch struct {
	Root string
}

// WithRoot returns a copy with the root directory set.
func (f FileAssetFetch) WithRoot(root string) FileAssetFetch {
	f.Root = root
	return f
}

// filePath resolves an asset path to a filesystem path under the root.
func (f FileAssetFetch) filePath(path AssetPath) string {
	return filepath.Join(f.Root, filepath.FromSlash(path.Path()))
}

// LoadBytes reads the file under the root directory.
func (f FileAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	bundle, _, err := loadFileBundle(f.filePath(path))
	return bundle, err
}

// AbsoluteFileAssetFetch loads asset bytes from absolute filesystem paths.
type AbsoluteFileAssetFetch struct{}

// LoadBytes reads the file named by the asset path's body.
func (AbsoluteFileAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	bundle, _, err := loadFileBundle(filepath.FromSlash(path.Path()))
	return bundle, err
}
