package assets

import (
	"fmt"
	"unicode/utf8"
)

// TextAssetProtocol decodes UTF-8 text assets under the "text" scheme,
// installing the content as a string component:
//
//	text, err := assets.Access[string](db, handle)
type TextAssetProtocol struct{}

// Name returns "text".
func (TextAssetProtocol) Name() string {
	return "text"
}

// ProcessBytes installs the decoded string on the asset.
func (TextAssetProtocol) ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error {
	if !utf8.Valid(bytes) {
		return fmt.Errorf("asset is not valid UTF-8")
	}
	text := string(bytes)
	return Insert(storage, handle.Entity(), &text)
}

// ProduceBytes encodes the asset's string component back to bytes for
// storing.
func (TextAssetProtocol) ProduceBytes(handle AssetHandle, storage *World) ([]byte, error) {
	text, err := Get[string](storage, handle.Entity())
	if err != nil {
		return nil, err
	}
	return []byte(*text), nil
}
