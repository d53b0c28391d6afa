package assets

// AssetsTracker reports loading progress for a chosen set of handles,
// isolated from whatever else the database holds. Track the assets of one
// loading screen or streaming batch and poll Report each tick:
//
//	tracker := assets.NewAssetsTracker().WithMany(batch)
//	for db.IsBusy() {
//	    db.Maintain()
//	    status := tracker.Report(db)
//	    drawProgressBar(status.Progress())
//	}
type AssetsTracker struct {
	handles map[AssetHandle]struct{}
}

// NewAssetsTracker creates an empty tracker.
func NewAssetsTracker() *AssetsTracker {
	return &AssetsTracker{handles: make(map[AssetHandle]struct{})}
}

// With tracks a handle and returns the tracker for chaining.
func (t *AssetsTracker) With(handle AssetHandle) *AssetsTracker {
	t.Track(handle)
	return t
}

// WithMany tracks multiple handles and returns the tracker for chaining.
func (t *AssetsTracker) WithMany(handles []AssetHandle) *AssetsTracker {
	t.TrackMany(handles)
	return t
}

// Track adds a handle to the tracked set.
func (t *AssetsTracker) Track(handle AssetHandle) {
	t.handles[handle] = struct{}{}
}

// TrackMany adds multiple handles to the tracked set.
func (t *AssetsTracker) TrackMany(handles []AssetHandle) {
	for _, handle := range handles {
		t.handles[handle] = struct{}{}
	}
}

// Untrack removes a handle from the tracked set.
func (t *AssetsTracker) Untrack(handle AssetHandle) {
	delete(t.handles, handle)
}

// UntrackMany removes multiple handles from the tracked set.
func (t *AssetsTracker) UntrackMany(handles []AssetHandle) {
	for _, handle := range handles {
		delete(t.handles, handle)
	}
}

// Len returns the number of tracked handles.
func (t *AssetsTracker) Len() int {
	return len(t.handles)
}

// IsEmpty returns true if no handles are tracked.
func (t *AssetsTracker) IsEmpty() bool {
	return len(t.handles) == 0
}

// Handles returns the tracked handles. Order is unspecified.
func (t *AssetsTracker) Handles() []AssetHandle {
	out := make([]AssetHandle, 0, len(t.handles))
	for handle := range t.handles {
		out = append(out, handle)
	}
	return out
}

// Report classifies only the tracked assets by their life-cycle state.
// Unloaded handles are skipped.
func (t *AssetsTracker) Report(db *Database) LoadingStatus {
	return db.LoadingStatusOf(t.Handles())
}

// LoadingStatusOf classifies the given assets by their life-cycle state,
// skipping handles that no longer exist. This is the subset-scoped form of
// LoadingStatus for callers that care about one batch among many.
func (db *Database) LoadingStatusOf(handles []AssetHandle) LoadingStatus {
	var status LoadingStatus
	for _, handle := range handles {
		if db.Storage.Alive(handle.Entity()) {
			status.classify(db, handle)
		}
	}
	return status
}
