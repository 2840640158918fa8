// Package catalog maintains the persisted per-conversation index: one
// pretty-printed JSON document mapping (project, id) to metadata and derived
// summaries, rewritten wholesale and only when something actually changed.
package catalog

import "time"

// Entry is one persisted catalog record, keyed by (Project, ID).
type Entry struct {
	ID                   string   `json:"id"`
	Project              string   `json:"project"`
	Date                 string   `json:"date"`
	FirstSentence        string   `json:"firstSentence"`
	OneLineSummary       string   `json:"oneLineSummary,omitempty"`
	BulletSummary        []string `json:"bulletSummary,omitempty"`
	ParagraphSummary     string   `json:"paragraphSummary,omitempty"`
	MessageCount         int      `json:"messageCount"`
	LastMessageTimestamp string   `json:"lastMessageTimestamp,omitempty"`
	NeedsAnalysis        bool     `json:"needsAnalysis"`
	LastAnalyzed         string   `json:"lastAnalyzed,omitempty"`
}

// Analyzed reports whether both heavy-tier summaries are present.
func (e Entry) Analyzed() bool {
	return e.OneLineSummary != "" && e.ParagraphSummary != ""
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// legacyEntry reads documents written by the previous format, which stored
// the summaries under different names. The fallbacks live only here, at the
// read boundary; merge logic never sees the old names.
type legacyEntry struct {
	Entry
	Summary   string   `json:"summary,omitempty"`
	Bullets   []string `json:"bullets,omitempty"`
	Paragraph string   `json:"paragraph,omitempty"`
}

func (l legacyEntry) upgrade() Entry {
	e := l.Entry
	if e.OneLineSummary == "" {
		e.OneLineSummary = l.Summary
	}
	if len(e.BulletSummary) == 0 {
		e.BulletSummary = l.Bullets
	}
	if e.ParagraphSummary == "" {
		e.ParagraphSummary = l.Paragraph
	}
	return e
}
