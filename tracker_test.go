package assets

import "testing"

func TestTrackerScopesProgressToTrackedHandles(t *testing.T) {
	t.Parallel()
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(CollectionAssetFetch{
			"ready.txt": []byte("R"),
			"a.txt":     []byte("A"),
			"b.txt":     []byte("B"),
		})

	// An unrelated asset resolves first and must not leak into the
	// batch's report.
	if _, err := db.Ensure("text://ready.txt"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	a, err := db.Ensure("text://a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	b, err := db.Ensure("text://b.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	tracker := NewAssetsTracker().WithMany([]AssetHandle{a, b})
	if tracker.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tracker.Len())
	}

	status := tracker.Report(db)
	if status.Total() != 2 {
		t.Fatalf("Total() = %d, want 2 (tracked handles only)", status.Total())
	}
	if len(status.AwaitingResolution) != 2 {
		t.Errorf("AwaitingResolution = %d, want 2", len(status.AwaitingResolution))
	}
	if status.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0 for a pending batch", status.Progress())
	}
	// The whole-database report sees the unrelated ready asset too.
	if whole := db.LoadingStatus(); len(whole.ReadyToUse) != 1 || whole.Total() != 3 {
		t.Errorf("LoadingStatus() = %d ready of %d, want 1 of 3",
			len(whole.ReadyToUse), whole.Total())
	}

	runUntilQuiescent(t, db, 4)
	status = tracker.Report(db)
	if len(status.ReadyToUse) != 2 || status.Progress() != 1 {
		t.Errorf("batch report = %d ready, progress %v; want 2 ready, progress 1",
			len(status.ReadyToUse), status.Progress())
	}
}

func TestTrackerTrackUntrack(t *testing.T) {
	t.Parallel()
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(CollectionAssetFetch{"a.txt": []byte("A")})

	handle, err := db.Ensure("text://a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	tracker := NewAssetsTracker().With(handle)
	if tracker.IsEmpty() {
		t.Error("IsEmpty() = true after tracking")
	}
	// Tracking twice keeps one entry.
	tracker.Track(handle)
	if tracker.Len() != 1 {
		t.Errorf("Len() = %d after double track, want 1", tracker.Len())
	}

	tracker.Untrack(handle)
	if !tracker.IsEmpty() {
		t.Error("IsEmpty() = false after untracking")
	}
	if status := tracker.Report(db); status.Total() != 0 {
		t.Errorf("empty tracker Total() = %d, want 0", status.Total())
	}
}

func TestTrackerSkipsUnloadedHandles(t *testing.T) {
	t.Parallel()
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(CollectionAssetFetch{"a.txt": []byte("A")})

	handle, err := db.Ensure("text://a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	tracker := NewAssetsTracker().With(handle)
	if err := db.Unload(handle); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if status := tracker.Report(db); status.Total() != 0 {
		t.Errorf("Total() = %d for an unloaded handle, want 0", status.Total())
	}
}
