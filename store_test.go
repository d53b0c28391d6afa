package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(FileAssetFetch{Root: dir}).
		WithStore(FileAssetStore{Root: dir})

	// Spawn a runtime-generated asset and request write-back.
	text := "Abra cadabra!"
	before, err := db.Spawn("text://saved.txt", NewBundle(&text))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := before.Store(db); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !before.AwaitsStoring(db) {
		t.Error("AwaitsStoring() = false after Store()")
	}
	if !db.DoesAwaitStoring() {
		t.Error("DoesAwaitStoring() = false after Store()")
	}
	runUntilQuiescent(t, db, 4)

	saved, err := os.ReadFile(filepath.Join(dir, "saved.txt"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(saved) != text {
		t.Errorf("stored bytes = %q, want %q", saved, text)
	}
	if before.AwaitsStoring(db) || before.BytesReadyToStore(db) {
		t.Error("storing markers survived the storing pass")
	}

	// Delete the asset and load it back from the written file.
	if err := db.Unload(before); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	after, err := db.Ensure("text://saved.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)
	if got, err := Access[string](db, after); err != nil || *got != text {
		t.Errorf("reloaded text = %v, %v; want %q", got, err, text)
	}
}

func TestStoreEvents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var kinds []AssetEventKind
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithStore(FileAssetStore{Root: dir}).
		WithEvent(AssetEventFunc(func(event AssetEvent) {
			kinds = append(kinds, event.Kind)
		}))

	text := "payload"
	handle, err := db.Spawn("text://out.txt", NewBundle(&text))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := db.Store(handle); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	want := []AssetEventKind{EventAwaitsStoring, EventBytesReadyToStore, EventBytesStored}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestStoreWithoutEngine(t *testing.T) {
	t.Parallel()
	db := NewDatabase().WithProtocol(TextAssetProtocol{})

	text := "orphan"
	handle, err := db.Spawn("text://orphan.txt", NewBundle(&text))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := db.Store(handle); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := db.Maintain(); err != nil {
		t.Fatalf("Maintain() error = %v", err)
	}

	if !handle.HasFailed(db) {
		t.Fatal("HasFailed() = false with no store engine")
	}
	if err := handle.Err(db); !errors.Is(err, ErrNoStoreEngine) {
		t.Errorf("Err() = %v, want ErrNoStoreEngine", err)
	}
}

func TestStoreWithoutProducer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	db := NewDatabase().
		WithProtocol(GroupAssetProtocol{}).
		WithStore(FileAssetStore{Root: dir})

	handle, err := db.Spawn("group://g.group", NewBundle(&GroupAsset{}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := db.Store(handle); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := db.Maintain(); err != nil {
		t.Fatalf("Maintain() error = %v", err)
	}

	// The group protocol has no encoding hook, so the request fails.
	if !handle.HasFailed(db) {
		t.Fatal("HasFailed() = false for a protocol without a producer")
	}
	if err := handle.Err(db); !errors.Is(err, ErrProtocolFailed) {
		t.Errorf("Err() = %v, want ErrProtocolFailed", err)
	}
}

func TestStorePath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	db := NewDatabase().
		WithProtocol(BytesAssetProtocol{}).
		WithStore(FileAssetStore{Root: dir})

	blob := []byte{0xde, 0xad}
	if _, err := db.Spawn("bytes://blob.bin", NewBundle(&blob)); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := db.StorePath("bytes://blob.bin"); err != nil {
		t.Fatalf("StorePath() error = %v", err)
	}
	if err := db.StorePath("bytes://missing.bin"); !errors.Is(err, ErrEntityMissing) {
		t.Errorf("StorePath(missing) error = %v, want ErrEntityMissing", err)
	}
	runUntilQuiescent(t, db, 4)

	saved, err := os.ReadFile(filepath.Join(dir, "blob.bin"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if len(saved) != 2 || saved[0] != 0xde || saved[1] != 0xad {
		t.Errorf("stored bytes = %v", saved)
	}
}

type manifestAsset struct {
	Lines []string
}

// manifestProcessor decodes and encodes a toy manifest format, exercising
// the bundle protocol's producing side.
type manifestProcessor struct{}

func (manifestProcessor) ProcessBytes(bytes []byte) (*BundleWithDependencies, error) {
	asset := &manifestAsset{}
	for _, line := range splitManifestLines(string(bytes)) {
		asset.Lines = append(asset.Lines, line)
	}
	return NewBundleWithDependencies(NewBundle(asset)), nil
}

func (manifestProcessor) ProduceBytes(handle AssetHandle, storage *World) (*StoreWithDependencies, error) {
	asset, err := Get[manifestAsset](storage, handle.Entity())
	if err != nil {
		return nil, err
	}
	joined := ""
	for i, line := range asset.Lines {
		if i > 0 {
			joined += "\n"
		}
		joined += line
	}
	return NewStoreWithDependencies([]byte(joined)), nil
}

func splitManifestLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			if line := content[start:i]; line != "" {
				lines = append(lines, line)
			}
			start = i + 1
		}
	}
	return lines
}

func TestBundleProtocolProduce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	db := NewDatabase().
		WithProtocol(NewBundleAssetProtocol("manifest", manifestProcessor{})).
		WithFetch(CollectionAssetFetch{"list.manifest": []byte("alpha\nbeta")}).
		WithStore(FileAssetStore{Root: dir})

	handle, err := db.Ensure("manifest://list.manifest")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	asset, err := Access[manifestAsset](db, handle)
	if err != nil {
		t.Fatalf("Access() error = %v", err)
	}
	asset.Lines = append(asset.Lines, "gamma")

	if err := handle.Store(db); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	saved, err := os.ReadFile(filepath.Join(dir, "list.manifest"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(saved) != "alpha\nbeta\ngamma" {
		t.Errorf("stored bytes = %q", saved)
	}
}
