package catalog

import (
	"reflect"
	"sort"
	"strings"

	"chatlens/internal/summary"
	"chatlens/internal/transcript"
)

type key struct {
	project string
	id      string
}

// Merge folds observed conversations into the existing entries. Summaries
// only merge forward: a field the fresh scan did not compute falls back to
// the previously stored value and is never blanked. Entries whose source was
// not observed this scan stay in place untouched — stale but present beats
// data loss. The changed flag is true when any entry differs from its stored
// version or the entry count grew.
func Merge(existing []Entry, observed []transcript.Conversation, opts summary.Options) ([]Entry, bool) {
	prev := make(map[key]Entry, len(existing))
	for _, e := range existing {
		prev[key{e.Project, e.ID}] = e
	}

	merged := make([]Entry, 0, len(existing)+len(observed))
	touched := make(map[key]struct{}, len(observed))
	changed := false

	for _, conv := range observed {
		k := key{conv.ProjectKey, conv.ID}
		touched[k] = struct{}{}

		entry := Entry{
			ID:                   conv.ID,
			Project:              conv.ProjectKey,
			Date:                 entryDate(conv),
			FirstSentence:        firstSentence(conv.FirstMessagePreview),
			MessageCount:         conv.MessageCount,
			LastMessageTimestamp: isoDate(conv.LastMessageTime),
		}

		old, existed := prev[k]
		if existed {
			entry.OneLineSummary = old.OneLineSummary
			entry.BulletSummary = old.BulletSummary
			entry.ParagraphSummary = old.ParagraphSummary
			entry.LastAnalyzed = old.LastAnalyzed
		}
		if len(entry.BulletSummary) == 0 {
			entry.BulletSummary = summary.Generate(conv.Messages, opts).Bullets
		}

		entry.NeedsAnalysis = !existed ||
			entry.MessageCount != old.MessageCount ||
			entry.LastMessageTimestamp != old.LastMessageTimestamp ||
			!entry.Analyzed()

		if !existed || !reflect.DeepEqual(entry, old) {
			changed = true
		}
		merged = append(merged, entry)
	}

	for _, e := range existing {
		if _, ok := touched[key{e.Project, e.ID}]; !ok {
			merged = append(merged, e)
		}
	}

	if len(merged) != len(existing) {
		changed = true
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date > merged[j].Date
	})
	return merged, changed
}

func entryDate(conv transcript.Conversation) string {
	if !conv.LastMessageTime.IsZero() {
		return isoDate(conv.LastMessageTime)
	}
	return isoDate(conv.ModifiedAt)
}

// firstSentence takes the first sentence-terminated prefix of the preview,
// or its first line when no terminator exists.
func firstSentence(preview string) string {
	preview = strings.TrimSpace(preview)
	if preview == "" {
		return ""
	}
	if idx := strings.IndexAny(preview, ".!?"); idx >= 0 {
		return strings.TrimSpace(preview[:idx+1])
	}
	if idx := strings.IndexByte(preview, '\n'); idx >= 0 {
		return strings.TrimSpace(preview[:idx])
	}
	return preview
}
