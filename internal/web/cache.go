package web

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"chatlens/internal/transcript"
)

const cacheTTL = 5 * time.Second

// scanCache keeps the last full scan so consecutive page loads within the
// TTL don't re-read every log file. The watcher (or the TTL) marks it dirty.
type scanCache struct {
	reader *transcript.Reader
	logger *zap.Logger

	mu       sync.Mutex
	convs    []transcript.Conversation
	loadedAt time.Time
	dirty    bool
}

func newScanCache(reader *transcript.Reader, logger *zap.Logger) *scanCache {
	return &scanCache{reader: reader, logger: logger, dirty: true}
}

func (c *scanCache) markDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

func (c *scanCache) conversations(ctx context.Context) ([]transcript.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty && time.Since(c.loadedAt) < cacheTTL {
		return c.convs, nil
	}

	start := time.Now()
	convs, err := c.reader.All(ctx)
	if err != nil {
		return nil, err
	}
	c.convs = convs
	c.loadedAt = time.Now()
	c.dirty = false
	c.logger.Debug("scanned logs",
		zap.Int("conversations", len(convs)),
		zap.Duration("took", time.Since(start)))
	return convs, nil
}

// watcher invalidates the scan cache whenever anything under the projects
// root changes.
type watcher struct {
	fs     *fsnotify.Watcher
	logger *zap.Logger
	done   chan struct{}
}

func newWatcher(root string, cache *scanCache, logger *zap.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				// Best effort; a project dir we cannot watch still gets
				// picked up by the cache TTL.
				_ = fsw.Add(filepath.Join(root, entry.Name()))
			}
		}
	}

	w := &watcher{fs: fsw, logger: logger, done: make(chan struct{})}
	go w.run(cache)
	return w, nil
}

func (w *watcher) run(cache *scanCache) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			cache.markDirty()
			if event.Op.Has(fsnotify.Create) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					_ = w.fs.Add(event.Name)
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *watcher) Close() {
	close(w.done)
	_ = w.fs.Close()
}
