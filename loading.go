package assets

// LoadingStatus is a point-in-time classification of assets by their
// life-cycle state. Database.LoadingStatus covers every asset; an
// AssetsTracker produces one scoped to a chosen handle set.
type LoadingStatus struct {
	// AwaitingResolution holds assets that still need fetching.
	AwaitingResolution []AssetHandle
	// AwaitingDeferredJob holds assets with an outstanding background fetch.
	AwaitingDeferredJob []AssetHandle
	// BytesReadyToProcess holds assets awaiting their protocol.
	BytesReadyToProcess []AssetHandle
	// AwaitingStoring holds assets queued for write-back.
	AwaitingStoring []AssetHandle
	// BytesReadyToStore holds encoded assets awaiting a store engine.
	BytesReadyToStore []AssetHandle
	// Failed holds assets whose progression failed.
	Failed []AssetHandle
	// ReadyToUse holds fully decoded, settled assets.
	ReadyToUse []AssetHandle
}

// classify appends the handle to the bucket matching its current state.
func (s *LoadingStatus) classify(db *Database, handle AssetHandle) {
	switch {
	case handle.HasFailed(db):
		s.Failed = append(s.Failed, handle)
	case handle.AwaitsStoring(db):
		s.AwaitingStoring = append(s.AwaitingStoring, handle)
	case handle.BytesReadyToStore(db):
		s.BytesReadyToStore = append(s.BytesReadyToStore, handle)
	case handle.AwaitsResolution(db):
		s.AwaitingResolution = append(s.AwaitingResolution, handle)
	case handle.AwaitsDeferredJob(db):
		s.AwaitingDeferredJob = append(s.AwaitingDeferredJob, handle)
	case handle.BytesReadyToProcess(db):
		s.BytesReadyToProcess = append(s.BytesReadyToProcess, handle)
	default:
		s.ReadyToUse = append(s.ReadyToUse, handle)
	}
}

// Total returns the number of classified assets.
func (s LoadingStatus) Total() int {
	return len(s.AwaitingResolution) +
		len(s.AwaitingDeferredJob) +
		len(s.BytesReadyToProcess) +
		len(s.AwaitingStoring) +
		len(s.BytesReadyToStore) +
		len(s.Failed) +
		len(s.ReadyToUse)
}

// InProgress returns the number of assets still moving through the life
// cycle, in either direction.
func (s LoadingStatus) InProgress() int {
	return len(s.AwaitingResolution) +
		len(s.AwaitingDeferredJob) +
		len(s.BytesReadyToProcess) +
		len(s.AwaitingStoring) +
		len(s.BytesReadyToStore)
}

// Progress returns the settled fraction in [0, 1]; an empty set is done.
func (s LoadingStatus) Progress() float64 {
	total := s.Total()
	if total == 0 {
		return 1
	}
	return float64(total-s.InProgress()) / float64(total)
}

// LoadingStatus classifies every asset in the database by its current
// life-cycle state. Use an AssetsTracker or LoadingStatusOf to scope the
// report to one batch of handles.
func (db *Database) LoadingStatus() LoadingStatus {
	var status LoadingStatus
	Each(db.Storage, func(e Entity, _ *AssetPath) {
		status.classify(db, NewAssetHandle(e))
	})
	return status
}
