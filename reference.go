package assets

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// AssetRef is a path plus a cached handle. It resolves through a database
// once and reuses the handle afterwards; serialized forms carry only the
// path, so a deserialized reference re-resolves lazily on first use.
type AssetRef struct {
	path   AssetPath
	handle AssetHandle
}

// NewAssetRef creates an unresolved reference to the given path.
func NewAssetRef(path string) *AssetRef {
	return &AssetRef{path: NewAssetPath(path)}
}

// NewAssetRefFromPath creates an unresolved reference to the given path.
func NewAssetRefFromPath(path AssetPath) *AssetRef {
	return &AssetRef{path: path}
}

// Path returns the referenced path.
func (r *AssetRef) Path() AssetPath {
	return r.path
}

// Handle returns the cached handle; invalid until the first Resolve.
func (r *AssetRef) Handle() AssetHandle {
	return r.handle
}

// Resolve returns the handle for the referenced path, ensuring the asset in
// the database on first use (or again after the cached handle went stale).
func (r *AssetRef) Resolve(db *Database) (AssetHandle, error) {
	if r.handle.IsValid() && db.Storage.Alive(r.handle.Entity()) {
		return r.handle, nil
	}
	handle, err := db.EnsurePath(r.path)
	if err != nil {
		return AssetHandle{}, err
	}
	r.handle = handle
	return handle, nil
}

// Invalidate drops the cached handle, forcing the next Resolve to look the
// path up again.
func (r *AssetRef) Invalidate() {
	r.handle = AssetHandle{}
}

// Equal compares references by path identity.
func (r *AssetRef) Equal(other *AssetRef) bool {
	if other == nil {
		return false
	}
	return r.path.Equal(other.path)
}

// String returns the referenced path.
func (r *AssetRef) String() string {
	return r.path.String()
}

// MarshalText serializes only the path, for JSON and YAML encoders.
func (r *AssetRef) MarshalText() ([]byte, error) {
	return []byte(r.path.Content()), nil
}

// UnmarshalText restores the path and leaves the handle empty for lazy
// resolution.
func (r *AssetRef) UnmarshalText(text []byte) error {
	path, err := ParseAssetPath(string(text))
	if err != nil {
		return err
	}
	*r = AssetRef{path: path}
	return nil
}

// MarshalYAML serializes only the path.
func (r *AssetRef) MarshalYAML() (any, error) {
	return r.path.Content(), nil
}

// UnmarshalYAML restores the path and leaves the handle empty.
func (r *AssetRef) UnmarshalYAML(value *yaml.Node) error {
	var content string
	if err := value.Decode(&content); err != nil {
		return err
	}
	path, err := ParseAssetPath(content)
	if err != nil {
		return err
	}
	*r = AssetRef{path: path}
	return nil
}

// MarshalCBOR serializes only the path.
func (r *AssetRef) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(r.path.Content())
}

// UnmarshalCBOR restores the path and leaves the handle empty.
func (r *AssetRef) UnmarshalCBOR(data []byte) error {
	var content string
	if err := cbor.Unmarshal(data, &content); err != nil {
		return fmt.Errorf("asset ref: %w", err)
	}
	path, err := ParseAssetPath(content)
	if err != nil {
		return err
	}
	*r = AssetRef{path: path}
	return nil
}

// SmartAssetRef is a reference-counted asset reference. Creating one ensures
// the asset and increments its count; Clone increments again; Release
// decrements. When the count reaches zero the database's next maintenance
// tick despawns the asset together with its private dependency subgraph —
// children reachable only through it and not referenced elsewhere.
type SmartAssetRef struct {
	path     AssetPath
	handle   AssetHandle
	released bool
}

// NewSmartAssetRef ensures the asset and takes one reference on it.
func NewSmartAssetRef(db *Database, path string) (*SmartAssetRef, error) {
	parsed, err := ParseAssetPath(path)
	if err != nil {
		return nil, err
	}
	handle, err := db.EnsurePath(parsed)
	if err != nil {
		return nil, err
	}
	db.acquire(handle.Entity())
	return &SmartAssetRef{path: parsed, handle: handle}, nil
}

// Clone takes an additional reference on the same asset.
func (r *SmartAssetRef) Clone(db *Database) *SmartAssetRef {
	db.acquire(r.handle.Entity())
	return &SmartAssetRef{path: r.path, handle: r.handle}
}

// Release drops this reference. Releasing twice is a no-op.
func (r *SmartAssetRef) Release(db *Database) {
	if r.released {
		return
	}
	r.released = true
	db.release(r.handle.Entity())
}

// Handle returns the referenced handle.
func (r *SmartAssetRef) Handle() AssetHandle {
	return r.handle
}

// Path returns the referenced path.
func (r *SmartAssetRef) Path() AssetPath {
	return r.path
}

// Equal compares smart references by path identity.
func (r *SmartAssetRef) Equal(other *SmartAssetRef) bool {
	if other == nil {
		return false
	}
	return r.path.Equal(other.path)
}
