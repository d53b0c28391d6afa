package assets

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Database is the asset database: it owns the entity-component storage, an
// ordered stack of fetch engines, the scheme-to-protocol registry, the
// global event bus and the reference-count table, and it advances every
// pending asset on each Maintain call.
//
// A database is a first-class value — multiple instances coexist and share
// nothing. The core is single-threaded cooperative: all storage mutation,
// protocol dispatch and life-cycle transitions happen on the thread calling
// Maintain. Background work is confined to fetch wrappers, which publish
// results through thread-safe queues drained during Maintain.
type Database struct {
	// Storage is the entity-component store holding all assets.
	Storage *World
	// Events is the global listener bus, fired once per observed transition.
	Events *AssetEventBindings

	logger     *zap.Logger
	fetchStack []AssetFetch
	storeStack []AssetStore
	protocols  map[string]AssetProtocol
	refs       map[Entity]uint32
	pending    []AssetEvent
}

// NewDatabase creates an empty database with no fetch engines or protocols.
func NewDatabase() *Database {
	return &Database{
		Storage:   NewWorld(),
		Events:    &AssetEventBindings{},
		logger:    zap.NewNop(),
		protocols: make(map[string]AssetProtocol),
		refs:      make(map[Entity]uint32),
	}
}

// WithFetch pushes a fetch engine and returns the database for chaining.
func (db *Database) WithFetch(fetch AssetFetch) *Database {
	db.PushFetch(fetch)
	return db
}

// WithStore pushes a store engine and returns the database for chaining.
func (db *Database) WithStore(store AssetStore) *Database {
	db.PushStore(store)
	return db
}

// WithProtocol registers a protocol and returns the database for chaining.
func (db *Database) WithProtocol(protocol AssetProtocol) *Database {
	db.AddProtocol(protocol)
	return db
}

// WithLogger sets the diagnostics logger and returns the database.
func (db *Database) WithLogger(logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	db.logger = logger
	return db
}

// WithEvent binds a global event listener and returns the database.
func (db *Database) WithEvent(listener AssetEventListener) *Database {
	db.Events.Bind(listener)
	return db
}

// PushFetch pushes an engine onto the fetch stack. The top engine is asked
// first during resolution; engines below serve as fallbacks.
func (db *Database) PushFetch(fetch AssetFetch) {
	db.fetchStack = append(db.fetchStack, fetch)
}

// PopFetch removes and returns the top fetch engine, nil when empty.
func (db *Database) PopFetch() AssetFetch {
	n := len(db.fetchStack)
	if n == 0 {
		return nil
	}
	fetch := db.fetchStack[n-1]
	db.fetchStack = db.fetchStack[:n-1]
	return fetch
}

// SwapFetch replaces the top fetch engine and returns the old one.
func (db *Database) SwapFetch(fetch AssetFetch) AssetFetch {
	old := db.PopFetch()
	db.PushFetch(fetch)
	return old
}

// UsingFetch pushes an engine, runs the function, and pops the engine again
// even when the function fails.
func (db *Database) UsingFetch(fetch AssetFetch, fn func(db *Database) error) error {
	db.PushFetch(fetch)
	defer db.PopFetch()
	return fn(db)
}

// PushStore pushes an engine onto the store stack. The top engine is asked
// first when a storing pass writes bytes out.
func (db *Database) PushStore(store AssetStore) {
	db.storeStack = append(db.storeStack, store)
}

// PopStore removes and returns the top store engine, nil when empty.
func (db *Database) PopStore() AssetStore {
	n := len(db.storeStack)
	if n == 0 {
		return nil
	}
	store := db.storeStack[n-1]
	db.storeStack = db.storeStack[:n-1]
	return store
}

// SwapStore replaces the top store engine and returns the old one.
func (db *Database) SwapStore(store AssetStore) AssetStore {
	old := db.PopStore()
	db.PushStore(store)
	return old
}

// UsingStore pushes an engine, runs the function, and pops the engine again
// even when the function fails.
func (db *Database) UsingStore(store AssetStore, fn func(db *Database) error) error {
	db.PushStore(store)
	defer db.PopStore()
	return fn(db)
}

// AddProtocol registers a protocol under its scheme. Registering a second
// protocol for the same scheme replaces the first.
func (db *Database) AddProtocol(protocol AssetProtocol) {
	db.protocols[protocol.Name()] = protocol
}

// RemoveProtocol unregisters and returns the protocol for a scheme.
func (db *Database) RemoveProtocol(name string) AssetProtocol {
	protocol := db.protocols[name]
	delete(db.protocols, name)
	return protocol
}

// Ensure returns the handle for a path, spawning a new entity awaiting
// resolution when the path is not yet known. Ensure never blocks and never
// fetches; the next Maintain tick picks the asset up. Two Ensure calls for
// equal paths return the same handle while the entity lives.
func (db *Database) Ensure(path string) (AssetHandle, error) {
	parsed, err := ParseAssetPath(path)
	if err != nil {
		return AssetHandle{}, err
	}
	return db.EnsurePath(parsed)
}

// EnsurePath is Ensure for an already parsed path.
func (db *Database) EnsurePath(path AssetPath) (AssetHandle, error) {
	if entity, ok := db.Storage.FindByPath(path); ok {
		return NewAssetHandle(entity), nil
	}
	stored := path
	entity := db.Storage.Spawn(NewBundle(&stored, &AssetAwaitsResolution{}))
	handle := NewAssetHandle(entity)
	db.pending = append(db.pending, AssetEvent{
		Handle: handle,
		Path:   stored,
		Kind:   EventAwaitsResolution,
	})
	return handle, nil
}

// Find returns the handle for a path without spawning.
func (db *Database) Find(path string) (AssetHandle, bool) {
	entity, ok := db.Storage.FindByPath(NewAssetPath(path))
	if !ok {
		return AssetHandle{}, false
	}
	return NewAssetHandle(entity), true
}

// Spawn adds an already resolved asset carrying the bundle's components.
// Great for runtime-generated assets that never touch a fetch engine.
func (db *Database) Spawn(path string, bundle *Bundle) (AssetHandle, error) {
	parsed, err := ParseAssetPath(path)
	if err != nil {
		return AssetHandle{}, err
	}
	if _, ok := db.Storage.FindByPath(parsed); ok {
		return AssetHandle{}, fmt.Errorf("asset %q already exists", path)
	}
	entity := db.Storage.Spawn(NewBundle(&parsed))
	if err := db.Storage.InsertBundle(entity, bundle); err != nil {
		return AssetHandle{}, err
	}
	return NewAssetHandle(entity), nil
}

// Store queues the asset for write-back: on the next Maintain tick its
// protocol encodes the decoded components to bytes and the store stack
// writes them out. Store never blocks.
func (db *Database) Store(handle AssetHandle) error {
	if !db.Storage.Alive(handle.Entity()) {
		return fmt.Errorf("%w: %s", ErrEntityMissing, handle.Entity())
	}
	path, err := Get[AssetPath](db.Storage, handle.Entity())
	if err != nil {
		return err
	}
	if err := Insert(db.Storage, handle.Entity(), &AssetAwaitsStoring{}); err != nil {
		return err
	}
	db.pending = append(db.pending, AssetEvent{
		Handle: handle,
		Path:   *path,
		Kind:   EventAwaitsStoring,
	})
	return nil
}

// StorePath is Store for an asset looked up by its path.
func (db *Database) StorePath(path string) error {
	handle, ok := db.Find(path)
	if !ok {
		return fmt.Errorf("%w: asset %q", ErrEntityMissing, path)
	}
	return db.Store(handle)
}

// Unload despawns the asset, dropping its relation edges. Children stay;
// despawning a whole private subgraph is the smart-reference GC's job.
func (db *Database) Unload(handle AssetHandle) error {
	if !db.Storage.Alive(handle.Entity()) {
		return fmt.Errorf("%w: %s", ErrEntityMissing, handle.Entity())
	}
	db.unloadEntity(handle.Entity())
	return nil
}

// unloadEntity queues the unload event and despawns the entity.
func (db *Database) unloadEntity(entity Entity) {
	if path, err := Get[AssetPath](db.Storage, entity); err == nil {
		db.pending = append(db.pending, AssetEvent{
			Handle: NewAssetHandle(entity),
			Path:   *path,
			Kind:   EventUnloaded,
		})
	}
	delete(db.refs, entity)
	_ = db.Storage.Despawn(entity)
}

// Reload unloads the asset at the path, if any, and ensures it again. The
// returned handle names a fresh entity; handle-preserving reloads are what
// HotReloadFileAssetFetch does.
func (db *Database) Reload(path string) (AssetHandle, error) {
	if handle, ok := db.Find(path); ok {
		_ = db.Unload(handle)
	}
	return db.Ensure(path)
}

// IsBusy reports whether any asset still carries a life-cycle marker that
// Maintain will advance. Bytes retained for diagnostics next to a failure
// tag do not count; failed assets sit still until reloaded.
func (db *Database) IsBusy() bool {
	if HasAny[AssetAwaitsResolution](db.Storage) || HasAny[AssetAwaitsDeferredJob](db.Storage) {
		return true
	}
	if HasAny[AssetAwaitsStoring](db.Storage) {
		return true
	}
	for _, entity := range EntitiesWith[AssetBytesAreReadyToProcess](db.Storage) {
		if !Has[AssetFailed](db.Storage, entity) {
			return true
		}
	}
	for _, entity := range EntitiesWith[AssetBytesAreReadyToStore](db.Storage) {
		if !Has[AssetFailed](db.Storage, entity) {
			return true
		}
	}
	return false
}

// DoesAwaitDeferredJob reports whether any background fetch is outstanding.
func (db *Database) DoesAwaitDeferredJob() bool {
	return HasAny[AssetAwaitsDeferredJob](db.Storage)
}

// DoesAwaitStoring reports whether any asset is queued for write-back.
func (db *Database) DoesAwaitStoring() bool {
	return HasAny[AssetAwaitsStoring](db.Storage) || HasAny[AssetBytesAreReadyToStore](db.Storage)
}

// acquire increments an entity's reference count.
func (db *Database) acquire(entity Entity) {
	db.refs[entity]++
}

// release decrements an entity's reference count; the next Maintain tick
// garbage-collects entities that reached zero.
func (db *Database) release(entity Entity) {
	if count, ok := db.refs[entity]; ok && count > 0 {
		db.refs[entity] = count - 1
	}
}

// RefCount returns the entity's smart-reference count.
func (db *Database) RefCount(entity Entity) uint32 {
	return db.refs[entity]
}

// Maintain runs one maintenance tick:
//
//  1. roll the change logs
//  2. drain fetch engines and protocol maintainers
//  3. resolve assets that awaited resolution at tick start
//  4. process assets whose bytes are ready once resolution finished
//  5. produce bytes for assets queued for storing, then write them out
//     through the store stack
//  6. dispatch events for the tick's observed transitions
//  7. garbage-collect unreferenced smart-referenced assets
//
// Dependencies spawned while processing a parent wait for the next tick,
// so dependency graphs unfold breadth-first. Per-asset failures are captured
// as AssetFailed components and events rather than aborting the tick;
// Maintain is idempotent once IsBusy reports false.
func (db *Database) Maintain() error {
	storage := db.Storage
	storage.RollChanges()

	// The resolution set is pinned at tick start: assets re-marked by the
	// engine drain (hot reloads) wait for the next tick.
	toResolve := snapshotOf[AssetAwaitsResolution](db)

	for i := len(db.fetchStack) - 1; i >= 0; i-- {
		if err := maintainFetch(db.fetchStack[i], storage); err != nil {
			db.logger.Error("fetch engine maintenance failed", zap.Error(err))
		}
	}
	for i := len(db.storeStack) - 1; i >= 0; i-- {
		if err := maintainStore(db.storeStack[i], storage); err != nil {
			db.logger.Error("store engine maintenance failed", zap.Error(err))
		}
	}
	for _, protocol := range db.protocols {
		if maintainer, ok := protocol.(ProtocolMaintainer); ok {
			if err := maintainer.Maintain(storage); err != nil {
				db.logger.Error("protocol maintenance failed",
					zap.String("protocol", protocol.Name()), zap.Error(err))
			}
		}
	}

	for _, marked := range toResolve {
		if !storage.Alive(marked.entity) || !Has[AssetAwaitsResolution](storage, marked.entity) {
			continue
		}
		_ = Remove[AssetAwaitsResolution](storage, marked.entity)
		db.resolve(marked.entity, marked.path)
	}

	// The processing set is pinned after resolution, so synchronously
	// fetched bytes decode in the same tick, while dependencies spawned by
	// a protocol below still wait for the next one.
	toProcess := snapshotOf[AssetBytesAreReadyToProcess](db)
	for _, marked := range toProcess {
		if !storage.Alive(marked.entity) || !Has[AssetBytesAreReadyToProcess](storage, marked.entity) {
			continue
		}
		// Bytes retained next to a failure tag are diagnostic only; they
		// are not re-dispatched until a reload clears the failure.
		if Has[AssetFailed](storage, marked.entity) {
			continue
		}
		db.process(marked.entity, marked.path)
	}

	// The storing half mirrors the fetch half: protocols encode queued
	// assets, then the store stack writes the encoded bytes out in the
	// same tick.
	toProduce := snapshotOf[AssetAwaitsStoring](db)
	for _, marked := range toProduce {
		if !storage.Alive(marked.entity) || !Has[AssetAwaitsStoring](storage, marked.entity) {
			continue
		}
		_ = Remove[AssetAwaitsStoring](storage, marked.entity)
		db.produce(marked.entity, marked.path)
	}

	toStore := snapshotOf[AssetBytesAreReadyToStore](db)
	for _, marked := range toStore {
		if !storage.Alive(marked.entity) || !Has[AssetBytesAreReadyToStore](storage, marked.entity) {
			continue
		}
		if Has[AssetFailed](storage, marked.entity) {
			continue
		}
		db.store(marked.entity, marked.path)
	}

	db.dispatchEvents()
	db.collectGarbage()
	return nil
}

// markedAsset is a snapshot entry of one entity and its path.
type markedAsset struct {
	entity Entity
	path   AssetPath
}

// snapshotOf collects the entities carrying marker M at tick start.
func snapshotOf[M any](db *Database) []markedAsset {
	var out []markedAsset
	Each2(db.Storage, func(e Entity, path *AssetPath, _ *M) {
		out = append(out, markedAsset{entity: e, path: *path})
	})
	return out
}

// resolve walks the fetch stack top-down and installs the first successful
// bundle; exhaustion marks the asset failed.
func (db *Database) resolve(entity Entity, path AssetPath) {
	if len(db.fetchStack) == 0 {
		db.fail(entity, fmt.Errorf("%w: resolving %q", ErrNoFetchEngine, path.String()))
		return
	}
	var causes []error
	for i := len(db.fetchStack) - 1; i >= 0; i-- {
		bundle, err := db.fetchStack[i].LoadBytes(path)
		if err != nil {
			causes = append(causes, err)
			continue
		}
		_ = db.Storage.InsertBundle(entity, bundle)
		return
	}
	db.fail(entity, fmt.Errorf("%w: resolving %q: %v",
		ErrNoFetchEngine, path.String(), errors.Join(causes...)))
}

// process dispatches the asset's bytes to the protocol for its scheme.
func (db *Database) process(entity Entity, path AssetPath) {
	handle := NewAssetHandle(entity)
	protocol, ok := db.protocols[path.Protocol()]
	if !ok {
		db.fail(entity, fmt.Errorf("%w: %q of asset %q", ErrNoProtocol, path.Protocol(), path.String()))
		return
	}
	if processor, ok := protocol.(AssetProcessor); ok {
		if err := processor.ProcessAsset(handle, db.Storage); err != nil {
			db.fail(entity, fmt.Errorf("%w: processing %q: %v", ErrProtocolFailed, path.String(), err))
		}
		return
	}
	ready, err := Get[AssetBytesAreReadyToProcess](db.Storage, entity)
	if err != nil {
		return
	}
	if err := protocol.ProcessBytes(handle, db.Storage, ready.Bytes); err != nil {
		// The bytes component stays for diagnostics until the next reload.
		db.fail(entity, fmt.Errorf("%w: processing %q: %v", ErrProtocolFailed, path.String(), err))
		return
	}
	_ = Remove[AssetBytesAreReadyToProcess](db.Storage, entity)
}

// produce asks the protocol for the asset's scheme to encode its components
// into bytes ready to store.
func (db *Database) produce(entity Entity, path AssetPath) {
	protocol, ok := db.protocols[path.Protocol()]
	if !ok {
		db.fail(entity, fmt.Errorf("%w: %q of asset %q", ErrNoProtocol, path.Protocol(), path.String()))
		return
	}
	producer, ok := protocol.(AssetProducer)
	if !ok {
		db.fail(entity, fmt.Errorf("%w: protocol %q cannot produce bytes for %q",
			ErrProtocolFailed, protocol.Name(), path.String()))
		return
	}
	bytes, err := producer.ProduceBytes(NewAssetHandle(entity), db.Storage)
	if err != nil {
		db.fail(entity, fmt.Errorf("%w: producing %q: %v", ErrProtocolFailed, path.String(), err))
		return
	}
	_ = Insert(db.Storage, entity, &AssetBytesAreReadyToStore{Bytes: bytes})
}

// store walks the store stack top-down and hands the encoded bytes to the
// first engine that accepts them; exhaustion marks the asset failed.
func (db *Database) store(entity Entity, path AssetPath) {
	ready, err := Get[AssetBytesAreReadyToStore](db.Storage, entity)
	if err != nil {
		return
	}
	bytes := ready.Bytes
	_ = Remove[AssetBytesAreReadyToStore](db.Storage, entity)
	if len(db.storeStack) == 0 {
		db.fail(entity, fmt.Errorf("%w: storing %q", ErrNoStoreEngine, path.String()))
		return
	}
	var causes []error
	for i := len(db.storeStack) - 1; i >= 0; i-- {
		if err := db.storeStack[i].SaveBytes(path, bytes); err != nil {
			causes = append(causes, err)
			continue
		}
		return
	}
	db.fail(entity, fmt.Errorf("%w: storing %q: %v",
		ErrNoStoreEngine, path.String(), errors.Join(causes...)))
}

// fail tags the entity with the progression failure.
func (db *Database) fail(entity Entity, err error) {
	_ = Insert(db.Storage, entity, &AssetFailed{Err: err})
}

// dispatchEvents fires listeners for every transition observed this tick:
// explicitly queued events first, then transitions derived from the change
// log in life-cycle order, preserving per-entity ordering guarantees.
func (db *Database) dispatchEvents() {
	pending := db.pending
	db.pending = nil
	for _, event := range pending {
		db.dispatch(event)
	}

	storage := db.Storage
	added := storage.Added()
	removed := storage.Removed()
	for _, entity := range EntitiesOf[AssetAwaitsResolution](added) {
		db.dispatchFor(entity, EventAwaitsResolution, nil)
	}
	for _, entity := range EntitiesOf[AssetAwaitsDeferredJob](added) {
		db.dispatchFor(entity, EventAwaitsDeferredJob, nil)
	}
	for _, entity := range EntitiesOf[AssetBytesAreReadyToProcess](added) {
		db.dispatchFor(entity, EventBytesReadyToProcess, nil)
	}
	for _, entity := range EntitiesOf[AssetBytesAreReadyToProcess](removed) {
		handle := NewAssetHandle(entity)
		if handle.IsReadyToUse(db) {
			db.dispatchFor(entity, EventBytesProcessed, nil)
		}
	}
	for _, entity := range EntitiesOf[AssetAwaitsStoring](added) {
		db.dispatchFor(entity, EventAwaitsStoring, nil)
	}
	for _, entity := range EntitiesOf[AssetBytesAreReadyToStore](added) {
		db.dispatchFor(entity, EventBytesReadyToStore, nil)
	}
	for _, entity := range EntitiesOf[AssetBytesAreReadyToStore](removed) {
		if storage.Alive(entity) && !Has[AssetFailed](storage, entity) {
			db.dispatchFor(entity, EventBytesStored, nil)
		}
	}
	for _, entity := range EntitiesOf[AssetFailed](added) {
		failed, err := Get[AssetFailed](storage, entity)
		if err != nil {
			continue
		}
		kind := EventFetchingFailed
		switch {
		case errors.Is(failed.Err, ErrStoreFailed), errors.Is(failed.Err, ErrNoStoreEngine):
			kind = EventStoringFailed
		case errors.Is(failed.Err, ErrProtocolFailed),
			errors.Is(failed.Err, ErrNoProtocol),
			Has[AssetBytesAreReadyToProcess](storage, entity):
			kind = EventProcessingFailed
		}
		db.dispatchFor(entity, kind, failed.Err)
	}
}

// dispatchFor builds and dispatches an event for a live entity.
func (db *Database) dispatchFor(entity Entity, kind AssetEventKind, cause error) {
	path, err := Get[AssetPath](db.Storage, entity)
	if err != nil {
		return
	}
	db.dispatch(AssetEvent{
		Handle: NewAssetHandle(entity),
		Path:   *path,
		Kind:   kind,
		Err:    cause,
	})
}

// dispatch delivers an event to the global bus and, when the entity still
// lives and carries bindings, to its per-asset listeners.
func (db *Database) dispatch(event AssetEvent) {
	if event.Kind.Failure() {
		db.logger.Warn("asset progression failed",
			zap.String("path", event.Path.String()),
			zap.Error(event.Err))
	}
	db.Events.Dispatch(event)
	entity := event.Handle.Entity()
	if db.Storage.Alive(entity) {
		if bindings, err := Get[AssetEventBindings](db.Storage, entity); err == nil {
			bindings.Dispatch(event)
		}
	}
}

// collectGarbage despawns every smart-referenced asset whose count reached
// zero, together with its private dependency subgraph — children that have
// no surviving parent and no live external reference.
func (db *Database) collectGarbage() {
	var zeroed []Entity
	for entity, count := range db.refs {
		if count == 0 {
			zeroed = append(zeroed, entity)
		}
	}
	for _, entity := range zeroed {
		delete(db.refs, entity)
		if !db.Storage.Alive(entity) {
			continue
		}
		if len(db.Storage.RelationsIncoming(AssetDependency, entity)) > 0 {
			continue
		}
		db.despawnSubgraph(entity)
	}
	// Dispatch the unload events queued by the sweep within this tick.
	pending := db.pending
	db.pending = nil
	for _, event := range pending {
		db.dispatch(event)
	}
}

// despawnSubgraph unloads the root and recursively every child left without
// a parent or external reference.
func (db *Database) despawnSubgraph(root Entity) {
	children := db.Storage.RelationsOutgoing(AssetDependency, root)
	db.unloadEntity(root)
	for _, child := range children {
		if !db.Storage.Alive(child) {
			continue
		}
		if db.refs[child] > 0 {
			continue
		}
		if len(db.Storage.RelationsIncoming(AssetDependency, child)) > 0 {
			continue
		}
		db.despawnSubgraph(child)
	}
}

// Close shuts down every fetch and store engine that owns background
// resources.
func (db *Database) Close() error {
	var errs []error
	for len(db.fetchStack) > 0 {
		if err := closeFetch(db.PopFetch()); err != nil {
			errs = append(errs, err)
		}
	}
	for len(db.storeStack) > 0 {
		if err := closeStore(db.PopStore()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
