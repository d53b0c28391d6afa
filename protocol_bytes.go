package assets

// BytesAssetProtocol passes raw bytes through under the "bytes" scheme,
// installing them as a []byte component. Useful when the application wants
// the undecoded payload.
type BytesAssetProtocol struct{}

// Name returns "bytes".
func (BytesAssetProtocol) Name() string {
	return "bytes"
}

// ProcessBytes installs a copy of the payload on the asset.
func (BytesAssetProtocol) ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error {
	copied := make([]byte, len(bytes))
	copy(copied, bytes)
	return Insert(storage, handle.Entity(), &copied)
}

// ProduceBytes returns a copy of the asset's payload for storing.
func (BytesAssetProtocol) ProduceBytes(handle AssetHandle, storage *World) ([]byte, error) {
	blob, err := Get[[]byte](storage, handle.Entity())
	if err != nil {
		return nil, err
	}
	copied := make([]byte, len(*blob))
	copy(copied, *blob)
	return copied, nil
}
