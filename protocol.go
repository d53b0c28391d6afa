package assets

// AssetProtocol decodes fetched bytes into components for one URI scheme.
//
// On success a protocol installs at least one decoded component; the
// database removes the bytes marker afterwards. On failure the database
// tags the asset with AssetFailed and retains the bytes for inspection
// until the next reload.
//
// A protocol that needs more than the raw bytes — existing components,
// custom marker handling — additionally implements AssetProcessor, which
// takes precedence and is then responsible for removing the bytes marker
// itself.
type AssetProtocol interface {
	// Name returns the scheme this protocol registers under.
	Name() string

	// ProcessBytes decodes bytes in place on the handle's entity.
	ProcessBytes(handle AssetHandle, storage *World, bytes []byte) error
}

// AssetProcessor is the richer processing hook. Implementations take the
// bytes marker off the entity themselves and are free to inspect any
// component already present.
type AssetProcessor interface {
	ProcessAsset(handle AssetHandle, storage *World) error
}

// AssetProducer is the optional encoding hook of a protocol: it turns an
// asset's decoded components back into the bytes a store engine writes out.
// A store request against a protocol without this hook fails the asset.
type AssetProducer interface {
	ProduceBytes(handle AssetHandle, storage *World) ([]byte, error)
}

// ProtocolMaintainer is implemented by protocols with internal state to
// advance each tick.
type ProtocolMaintainer interface {
	Maintain(storage *World) error
}

// spawnDependency finds or spawns the child asset for a dependency path and
// relates it to the parent. New children enter the life cycle awaiting
// resolution on the next tick.
func spawnDependency(storage *World, parent Entity, path AssetPath) (Entity, error) {
	child, ok := storage.FindByPath(path)
	if !ok {
		child = storage.Spawn(NewBundle(&path, &AssetAwaitsResolution{}))
	}
	if err := storage.Relate(AssetDependency, parent, child); err != nil {
		return Entity{}, err
	}
	return child, nil
}
