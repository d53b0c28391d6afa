package assets

import (
	"os"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// fileFingerprint is what the watcher remembers about a loaded file.
// Mod time and size gate the cheap check; the content digest suppresses
// spurious reloads when a file is rewritten with identical bytes.
type fileFingerprint struct {
	modTime time.Time
	size    int64
	digest  [32]byte
}

// HotReloadFileAssetFetch wraps a filesystem fetch with a polling watcher.
//
// Every poll interval its Maintain pass stats the source file of each
// loaded file asset; when the content digest changes, the asset's decoded
// components are cleared and it re-enters resolution under the same entity
// and path, so existing handles stay valid across the reload.
type HotReloadFileAssetFetch struct {
	fetch    FileAssetFetch
	interval time.Duration
	lastPoll time.Time

	// mu guards prints; LoadBytes may run on deferred workers.
	mu     sync.Mutex
	prints map[string]fileFingerprint
}

// NewHotReloadFileAssetFetch creates a hot-reloading wrapper over a file
// fetch, polling at the given interval.
func NewHotReloadFileAssetFetch(fetch FileAssetFetch, pollInterval time.Duration) *HotReloadFileAssetFetch {
	return &HotReloadFileAssetFetch{
		fetch:    fetch,
		interval: pollInterval,
		prints:   make(map[string]fileFingerprint),
	}
}

// LoadBytes delegates to the file fetch and fingerprints the loaded bytes.
func (h *HotReloadFileAssetFetch) LoadBytes(path AssetPath) (*Bundle, error) {
	file := h.fetch.filePath(path)
	bundle, bytes, err := loadFileBundle(file)
	if err != nil {
		return nil, err
	}
	info, statErr := os.Stat(file)
	stamp := fileFingerprint{digest: blake3.Sum256(bytes)}
	if statErr == nil {
		stamp.modTime = info.ModTime()
		stamp.size = info.Size()
	}
	h.mu.Lock()
	h.prints[file] = stamp
	h.mu.Unlock()
	return bundle, nil
}

// Maintain polls watched files, debounced by the poll interval, and re-emits
// resolution on assets whose source content changed.
func (h *HotReloadFileAssetFetch) Maintain(storage *World) error {
	now := time.Now()
	if now.Sub(h.lastPoll) < h.interval {
		return nil
	}
	h.lastPoll = now

	type reload struct {
		entity Entity
		file   string
		stamp  fileFingerprint
	}
	var reloads []reload
	Each2(storage, func(e Entity, _ *AssetPath, from *FromFile) {
		h.mu.Lock()
		known, watched := h.prints[from.Path]
		h.mu.Unlock()
		if !watched {
			return
		}
		info, err := os.Stat(from.Path)
		if err != nil {
			return
		}
		if info.ModTime().Equal(known.modTime) && info.Size() == known.size {
			return
		}
		bytes, err := os.ReadFile(from.Path)
		if err != nil {
			return
		}
		digest := blake3.Sum256(bytes)
		next := fileFingerprint{modTime: info.ModTime(), size: info.Size(), digest: digest}
		if digest == known.digest {
			// Touched but not changed; remember the new mod time only.
			h.mu.Lock()
			h.prints[from.Path] = next
			h.mu.Unlock()
			return
		}
		reloads = append(reloads, reload{entity: e, file: from.Path, stamp: next})
	})

	pathID := componentID[AssetPath]()
	for _, r := range reloads {
		h.mu.Lock()
		h.prints[r.file] = r.stamp
		h.mu.Unlock()
		if err := storage.removeAllExcept(r.entity, pathID); err != nil {
			continue
		}
		_ = Insert(storage, r.entity, &AssetAwaitsResolution{})
		_ = Touch[AssetPath](storage, r.entity)
	}
	return nil
}
