// Package assets provides a database-style asset registry built on an
// entity-component store.
//
// Assets are rows in a local ECS world: an entity carrying at minimum an
// AssetPath component. The database drives each asset through a deterministic
// life cycle — awaiting resolution, bytes ready, processed — by asking a
// stack of fetch engines for raw bytes and dispatching those bytes to a
// protocol selected by the path's scheme.
//
// # Quick Start
//
//	db := assets.NewDatabase().
//	    WithProtocol(assets.TextAssetProtocol{}).
//	    WithFetch(assets.FileAssetFetch{Root: "./assets"})
//
//	handle, err := db.Ensure("text://lorem.txt")
//	if err != nil {
//	    return err
//	}
//	for db.IsBusy() {
//	    if err := db.Maintain(); err != nil {
//	        return err
//	    }
//	}
//	text, _ := assets.Access[string](db, handle)
//
// # Components
//
// Components are plain Go values attached to entities:
//
//	assets.Insert(db.Storage, handle.Entity(), &Material{Shader: "pbr"})
//	material, err := assets.Get[Material](db.Storage, handle.Entity())
//	assets.Remove[Material](db.Storage, handle.Entity())
//
// # Fetch engines
//
// Anything implementing AssetFetch can supply bytes: files, HTTP endpoints,
// zip archives, embedded key-value stores, plain maps. Wrappers compose over
// a single contract — Deferred moves fetching to a worker pool, HotReload
// watches the filesystem, Router dispatches by path prefix, Rewrite and
// Fallback transform or retry requests.
//
// # Protocols
//
// A protocol registers under a scheme (the part before "://") and decodes
// raw bytes into components, optionally scheduling dependency assets that
// resolve on subsequent maintenance ticks.
//
// # Storing
//
// The life cycle also runs in reverse: a database configured with a store
// engine writes assets back out. Handle.Store queues the asset, its
// protocol encodes the decoded components to bytes, and the store stack
// saves them on the next maintenance tick:
//
//	db = db.WithStore(assets.FileAssetStore{Root: "./assets"})
//	handle, _ := db.Spawn("text://saved.txt", assets.NewBundle(&content))
//	_ = handle.Store(db)
package assets

// Version is the library version.
const Version = "1.0.0"
