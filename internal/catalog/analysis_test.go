package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlens/internal/summary"
	"chatlens/internal/transcript"
)

const analyzerLog = `{"type":"user","timestamp":"2025-03-14T09:30:00Z","message":{"role":"user","content":"please fix the session handling"}}
{"type":"assistant","timestamp":"2025-03-14T09:31:00Z","message":{"role":"assistant","content":"fixed the session expiry check in auth.go"}}
`

func writeAnalyzerLog(t *testing.T, root, project, id, body string) {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".jsonl"), []byte(body), 0o644))
}

func TestAnalyzerFillsHeavySummaries(t *testing.T) {
	root := t.TempDir()
	writeAnalyzerLog(t, root, "p", "abc", analyzerLog)

	reader := transcript.NewReader(root, nil)
	store := newTestStore(t)
	analyzer := NewAnalyzer(store, reader, summary.DefaultOptions(), nil)

	observed, err := reader.All(context.Background())
	require.NoError(t, err)
	_, err = store.Sync(context.Background(), observed)
	require.NoError(t, err)

	updated, err := analyzer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	entries := store.Load()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.False(t, e.NeedsAnalysis)
	assert.NotEmpty(t, e.OneLineSummary)
	assert.NotEmpty(t, e.ParagraphSummary)
	assert.NotEmpty(t, e.LastAnalyzed)
	assert.True(t, e.Analyzed())
}

func TestAnalyzerSkipsMissingSource(t *testing.T) {
	root := t.TempDir()
	reader := transcript.NewReader(root, nil)
	store := newTestStore(t)
	analyzer := NewAnalyzer(store, reader, summary.DefaultOptions(), nil)

	require.NoError(t, store.Persist([]Entry{{
		ID: "gone", Project: "p", NeedsAnalysis: true,
	}}))

	updated, err := analyzer.Run(context.Background())
	require.NoError(t, err, "a missing source never fails the batch")
	assert.Equal(t, 0, updated)

	entries := store.Load()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].NeedsAnalysis, "entry stays flagged for a later run")
}

func TestAnalyzerSecondRunIsNoop(t *testing.T) {
	root := t.TempDir()
	writeAnalyzerLog(t, root, "p", "abc", analyzerLog)

	reader := transcript.NewReader(root, nil)
	store := newTestStore(t)
	analyzer := NewAnalyzer(store, reader, summary.DefaultOptions(), nil)

	observed, err := reader.All(context.Background())
	require.NoError(t, err)
	_, err = store.Sync(context.Background(), observed)
	require.NoError(t, err)

	updated, err := analyzer.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	updated, err = analyzer.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, updated)
}
