package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/klauspost/compress/zip"
)

func TestCollectionFetch(t *testing.T) {
	t.Parallel()
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(CollectionAssetFetch{"a.txt": []byte("A")})

	handle, err := db.Ensure("text://a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "A" {
		t.Errorf("text = %v, %v; want A", text, err)
	}
	if _, err := Access[FromCollection](db, handle); err != nil {
		t.Errorf("FromCollection tag missing: %v", err)
	}

	missing, err := db.Ensure("text://missing.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)
	if !missing.HasFailed(db) {
		t.Error("missing collection key did not fail")
	}
}

func TestZipContainerFetch(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("dir/a.txt")
	if err != nil {
		t.Fatalf("zip Create() error = %v", err)
	}
	if _, err := entry.Write([]byte("zipped")); err != nil {
		t.Fatalf("zip Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}

	partial, err := NewZipPartialFetch(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewZipPartialFetch() error = %v", err)
	}
	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(NewContainerAssetFetch(partial))

	handle, err := db.Ensure("text://dir/a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "zipped" {
		t.Errorf("text = %v, %v; want zipped", text, err)
	}
	if _, err := Access[FromContainer](db, handle); err != nil {
		t.Errorf("FromContainer tag missing: %v", err)
	}

	if _, err := partial.LoadBytes(NewAssetPath("text://nope.txt")); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("missing entry error = %v, want ErrFetchFailed", err)
	}
}

func TestLevelDBContainerFetch(t *testing.T) {
	t.Parallel()
	store, err := leveldb.OpenFile(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("leveldb OpenFile() error = %v", err)
	}
	defer store.Close()
	if err := store.Put([]byte("k.txt"), []byte("from-kv"), nil); err != nil {
		t.Fatalf("leveldb Put() error = %v", err)
	}

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(NewContainerAssetFetch(NewLevelDBPartialFetch(store)))

	handle, err := db.Ensure("text://k.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "from-kv" {
		t.Errorf("text = %v, %v; want from-kv", text, err)
	}

	partial := NewLevelDBPartialFetch(store)
	if _, err := partial.LoadBytes(NewAssetPath("text://absent")); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("missing key error = %v, want ErrFetchFailed", err)
	}
}

func TestHTTPFetch(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets/hello.txt" {
			fmt.Fprint(w, "from-http")
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(HTTPAssetFetch{BaseURL: server.URL + "/assets"})

	handle, err := db.Ensure("text://hello.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "from-http" {
		t.Errorf("text = %v, %v; want from-http", text, err)
	}
	from, err := Access[FromHTTP](db, handle)
	if err != nil {
		t.Fatalf("FromHTTP metadata missing: %v", err)
	}
	if from.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", from.StatusCode)
	}

	missing, _ := db.Ensure("text://nope.txt")
	runUntilQuiescent(t, db, 4)
	if !missing.HasFailed(db) {
		t.Error("404 response did not fail the asset")
	}
}

func TestRewriteFetchKeepsRequestedPath(t *testing.T) {
	t.Parallel()
	inner := CollectionAssetFetch{"real.txt": []byte("rewritten")}
	rewrite := NewRewriteAssetFetch(inner, func(path AssetPath) (AssetPath, error) {
		return AssetPathFromParts(path.Protocol(), "real.txt", path.Meta()), nil
	})

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(rewrite)

	handle, err := db.Ensure("text://logical.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "rewritten" {
		t.Errorf("text = %v, %v; want rewritten", text, err)
	}
	// The stored path is the requested one, and lookups key on it.
	path, err := handle.Path(db)
	if err != nil || path.Content() != "text://logical.txt" {
		t.Errorf("stored path = %v, %v; want text://logical.txt", path, err)
	}
	if found, ok := db.Find("text://logical.txt"); !ok || found != handle {
		t.Error("Find() by requested path failed after rewrite")
	}
	if _, ok := db.Find("text://real.txt"); ok {
		t.Error("Find() by rewritten path unexpectedly succeeded")
	}
}

func TestFallbackFetch(t *testing.T) {
	t.Parallel()
	inner := CollectionAssetFetch{"default.txt": []byte("fallback-content")}
	fallback := NewFallbackAssetFetch(inner).
		Path("text://default.txt").
		Path("bytes://unrelated.bin")

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(fallback)

	handle, err := db.Ensure("text://missing.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "fallback-content" {
		t.Errorf("text = %v, %v; want fallback-content", text, err)
	}
	// The asset keeps the requested path even though a fallback served it.
	path, _ := handle.Path(db)
	if path.Content() != "text://missing.txt" {
		t.Errorf("stored path = %q, want text://missing.txt", path.Content())
	}
}

func TestFutureFetch(t *testing.T) {
	t.Parallel()
	producer := func(ctx context.Context, path AssetPath) (*Bundle, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if path.Path() != "async.txt" {
			return nil, fmt.Errorf("unknown asset %q", path.Path())
		}
		return NewBundle(&AssetBytesAreReadyToProcess{Bytes: []byte("from-future")}), nil
	}

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(NewFutureAssetFetch(producer))
	defer db.Close()

	handle, err := db.Ensure("text://async.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := db.Maintain(); err != nil {
		t.Fatalf("Maintain() error = %v", err)
	}
	if !handle.AwaitsDeferredJob(db) {
		t.Error("AwaitsDeferredJob() = false after handover tick")
	}

	runUntilQuiescentAsync(t, db, 200)
	if text, err := Access[string](db, handle); err != nil || *text != "from-future" {
		t.Errorf("text = %v, %v; want from-future", text, err)
	}
}

func TestRouterPatternMeta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pattern RouterPattern
		path    string
		matches bool
		forward string
	}{
		{
			"Prefix stripped",
			RouterPattern{PathPrefix: "dlc/"},
			"text://dlc/a.txt", true, "a.txt",
		},
		{
			"Prefix mismatch",
			RouterPattern{PathPrefix: "dlc/"},
			"text://base/a.txt", false, "",
		},
		{
			"Meta key required",
			RouterPattern{Entries: []RouterEntryPattern{{Key: "pack"}}},
			"text://a.txt?pack=dlc1", true, "a.txt",
		},
		{
			"Meta key missing",
			RouterPattern{Entries: []RouterEntryPattern{{Key: "pack"}}},
			"text://a.txt", false, "",
		},
		{
			"Meta key and value",
			RouterPattern{Entries: []RouterEntryPattern{{Key: "pack", Value: "dlc1"}}},
			"text://a.txt?pack=dlc2", false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forwarded, ok := tt.pattern.matches(NewAssetPath(tt.path))
			if ok != tt.matches {
				t.Fatalf("matches() = %v, want %v", ok, tt.matches)
			}
			if ok && forwarded.Path() != tt.forward {
				t.Errorf("forwarded path = %q, want %q", forwarded.Path(), tt.forward)
			}
		})
	}
}

func TestRouterInsertionOrderBreaksTies(t *testing.T) {
	t.Parallel()
	first := CollectionAssetFetch{"a.txt": []byte("first")}
	second := CollectionAssetFetch{"a.txt": []byte("second")}
	router := NewRouterAssetFetch().
		Route(RouterPattern{}, 0, first).
		Route(RouterPattern{}, 0, second)

	db := NewDatabase().
		WithProtocol(TextAssetProtocol{}).
		WithFetch(router)

	handle, err := db.Ensure("text://a.txt")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	runUntilQuiescent(t, db, 4)

	if text, err := Access[string](db, handle); err != nil || *text != "first" {
		t.Errorf("text = %v, %v; want first (earliest registration wins ties)", text, err)
	}
}
