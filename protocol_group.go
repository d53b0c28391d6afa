package assets

import "strings"

// GroupAsset tags an asset decoded by the group protocol. Groups produce no
// content of their own; their value is the dependency edges to their
// children.
type GroupAsset struct{}

// GroupAssetProtocol reads a text manifest of child asset paths — one per
// line, blank lines ignored — and installs each as a dependency under the
// "group" scheme. Loading one group therefore pulls a whole set of assets
// through the life cycle:
//
//	images/logo.png
//	text://credits.txt
type GroupAssetProtocol struct{}

// Name returns "group".
func (GroupAssetProtocol) Name() string {
	return "group"
}

// ProcessBytes schedules each manifest line as a dependency and tags the
// asset as a group.
func (GroupAssetProtocol) ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error {
	for line := range strings.Lines(string(bytes)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := spawnDependency(storage, handle.Entity(), NewAssetPath(line)); err != nil {
			return err
		}
	}
	return Insert(storage, handle.Entity(), &GroupAsset{})
}
