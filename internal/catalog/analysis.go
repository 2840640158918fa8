package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatlens/internal/summary"
	"chatlens/internal/transcript"
)

// Analyzer runs the heavy tier-2 pass over catalog entries that need it,
// re-reading each conversation from its source log.
type Analyzer struct {
	store  *Store
	reader *transcript.Reader
	opts   summary.Options
	logger *zap.Logger
}

func NewAnalyzer(store *Store, reader *transcript.Reader, opts summary.Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{store: store, reader: reader, opts: opts, logger: logger}
}

// Run analyzes every entry flagged for analysis (or missing tier-2 fields),
// merges the results back in place, and persists once. An entry whose source
// can no longer be found is skipped without failing the batch. Returns the
// number of entries updated.
func (a *Analyzer) Run(ctx context.Context) (int, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	entries := a.store.Load()
	updated := 0

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		e := &entries[i]
		if !e.NeedsAnalysis && e.Analyzed() {
			continue
		}

		conv, err := a.reader.Find(e.Project, e.ID)
		if err != nil {
			a.logger.Warn("source missing, keeping stale entry",
				zap.String("project", e.Project),
				zap.String("id", e.ID),
				zap.Error(err))
			continue
		}

		start := time.Now()
		analysis := summary.Analyze(conv.Messages, a.opts)

		e.OneLineSummary = analysis.OneLine
		e.ParagraphSummary = analysis.Paragraph
		if len(analysis.Bullets) > 0 {
			e.BulletSummary = analysis.Bullets
		}
		e.NeedsAnalysis = false
		e.LastAnalyzed = isoDate(time.Now())
		updated++

		a.logger.Info("analyzed conversation",
			zap.String("project", e.Project),
			zap.String("id", e.ID),
			zap.Duration("took", time.Since(start)))
	}

	if updated > 0 {
		if err := a.store.Persist(entries); err != nil {
			return updated, err
		}
	}
	a.logger.Info("analysis pass complete", zap.Int("updated", updated))
	return updated, nil
}
