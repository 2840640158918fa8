package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"chatlens/internal/summary"
	"chatlens/internal/transcript"
)

// Store owns the catalog document. All load-merge-persist sequences run
// behind one mutex, so the process is a single writer; overlapping writes
// from a second process would still be last-writer-wins, which is accepted
// for a single-user local tool.
type Store struct {
	path   string
	opts   summary.Options
	logger *zap.Logger
	mu     sync.Mutex
}

func NewStore(path string, opts summary.Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, opts: opts, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Load reads the persisted document. A missing or corrupt file yields an
// empty catalog rather than an error; the index is a cache and can always
// be rebuilt from source.
func (s *Store) Load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("catalog unreadable, starting empty", zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	var raw []legacyEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("catalog corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		return nil
	}

	entries := make([]Entry, 0, len(raw))
	for _, l := range raw {
		entries = append(entries, l.upgrade())
	}
	return entries
}

// Persist rewrites the whole document.
func (s *Store) Persist(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", s.path, err)
	}
	return nil
}

// Raw returns the persisted document bytes for external inspection.
func (s *Store) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("[]\n"), nil
		}
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return data, nil
}

// Sync merges freshly observed conversations into the catalog and persists
// only when the merge reported a change. It returns the merged entries.
func (s *Store) Sync(ctx context.Context, observed []transcript.Conversation) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing := s.Load()
	merged, changed := Merge(existing, observed, s.opts)
	if !changed {
		return merged, nil
	}
	if err := s.Persist(merged); err != nil {
		return nil, err
	}
	s.logger.Debug("catalog persisted",
		zap.Int("entries", len(merged)),
		zap.String("path", s.path))
	return merged, nil
}
