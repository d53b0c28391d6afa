package assets

// AssetHandle names an asset entity in a database. Handles are cheap copyable
// values; a handle stays valid until its asset is unloaded, after which every
// operation through it reports ErrEntityMissing.
type AssetHandle struct {
	entity Entity
}

// NewAssetHandle wraps an entity in a handle.
func NewAssetHandle(entity Entity) AssetHandle {
	return AssetHandle{entity: entity}
}

// Entity returns the underlying entity.
func (h AssetHandle) Entity() Entity {
	return h.entity
}

// IsValid reports whether the handle was produced by a spawn.
func (h AssetHandle) IsValid() bool {
	return h.entity.IsValid()
}

// Path returns the asset's path.
func (h AssetHandle) Path(db *Database) (AssetPath, error) {
	path, err := Get[AssetPath](db.Storage, h.entity)
	if err != nil {
		return AssetPath{}, err
	}
	return *path, nil
}

// AwaitsResolution reports whether the asset still needs fetching.
func (h AssetHandle) AwaitsResolution(db *Database) bool {
	return Has[AssetAwaitsResolution](db.Storage, h.entity)
}

// AwaitsDeferredJob reports whether a background fetch is outstanding.
func (h AssetHandle) AwaitsDeferredJob(db *Database) bool {
	return Has[AssetAwaitsDeferredJob](db.Storage, h.entity)
}

// BytesReadyToProcess reports whether raw bytes await decoding.
func (h AssetHandle) BytesReadyToProcess(db *Database) bool {
	return Has[AssetBytesAreReadyToProcess](db.Storage, h.entity)
}

// AwaitsStoring reports whether the asset is queued for write-back.
func (h AssetHandle) AwaitsStoring(db *Database) bool {
	return Has[AssetAwaitsStoring](db.Storage, h.entity)
}

// BytesReadyToStore reports whether encoded bytes await a store engine.
func (h AssetHandle) BytesReadyToStore(db *Database) bool {
	return Has[AssetBytesAreReadyToStore](db.Storage, h.entity)
}

// Store queues the asset for write-back through the database's store stack.
func (h AssetHandle) Store(db *Database) error {
	return db.Store(h)
}

// HasFailed reports whether the asset's progression failed.
func (h AssetHandle) HasFailed(db *Database) bool {
	return Has[AssetFailed](db.Storage, h.entity)
}

// Err returns the asset's failure cause, nil if it has not failed.
func (h AssetHandle) Err(db *Database) error {
	failed, err := Get[AssetFailed](db.Storage, h.entity)
	if err != nil {
		return nil
	}
	return failed.Err
}

// IsReadyToUse reports whether the asset finished its life cycle: it is
// alive, carries no life-cycle marker and has not failed.
func (h AssetHandle) IsReadyToUse(db *Database) bool {
	if !db.Storage.Alive(h.entity) {
		return false
	}
	return !h.AwaitsResolution(db) &&
		!h.AwaitsDeferredJob(db) &&
		!h.BytesReadyToProcess(db) &&
		!h.HasFailed(db)
}

// Dependencies returns the asset's direct children in the dependency graph.
func (h AssetHandle) Dependencies(db *Database) []AssetHandle {
	return handlesOf(db.Storage.RelationsOutgoing(AssetDependency, h.entity))
}

// Dependents returns the assets that directly depend on this one.
func (h AssetHandle) Dependents(db *Database) []AssetHandle {
	return handlesOf(db.Storage.RelationsIncoming(AssetDependency, h.entity))
}

// DependenciesRecursive returns the asset's full dependency subtree in
// breadth-first order, visiting shared children once.
func (h AssetHandle) DependenciesRecursive(db *Database) []AssetHandle {
	seen := map[Entity]struct{}{h.entity: {}}
	queue := db.Storage.RelationsOutgoing(AssetDependency, h.entity)
	var out []AssetHandle
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		if _, ok := seen[child]; ok {
			continue
		}
		seen[child] = struct{}{}
		out = append(out, NewAssetHandle(child))
		queue = append(queue, db.Storage.RelationsOutgoing(AssetDependency, child)...)
	}
	return out
}

func handlesOf(entities []Entity) []AssetHandle {
	if len(entities) == 0 {
		return nil
	}
	out := make([]AssetHandle, len(entities))
	for i, e := range entities {
		out[i] = NewAssetHandle(e)
	}
	return out
}

// Access returns a component of the asset. The pointer allows in-place
// mutation; flag mutations with Touch when change detection matters.
func Access[T any](db *Database, h AssetHandle) (*T, error) {
	return Get[T](db.Storage, h.entity)
}

// ObtainComponent returns a component of the asset, inserting a zero value
// first if absent.
func ObtainComponent[T any](db *Database, h AssetHandle) (*T, error) {
	return Obtain[T](db.Storage, h.entity)
}
