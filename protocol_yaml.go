package assets

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLAsset is the decoded document of a yaml-scheme asset.
type YAMLAsset map[string]any

// YAMLAssetProtocol decodes YAML mapping documents under the "yaml" scheme,
// installing them as a YAMLAsset component.
type YAMLAssetProtocol struct{}

// Name returns "yaml".
func (YAMLAssetProtocol) Name() string {
	return "yaml"
}

// ProcessBytes installs the decoded document on the asset.
func (YAMLAssetProtocol) ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error {
	document := YAMLAsset{}
	if err := yaml.Unmarshal(bytes, &document); err != nil {
		return fmt.Errorf("decoding yaml document: %w", err)
	}
	return Insert(storage, handle.Entity(), &document)
}
