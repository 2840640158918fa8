// Package search counts and highlights case-insensitive literal matches of a
// user query across conversations. Queries are never interpreted as
// patterns; metacharacters match themselves.
package search

import (
	"sort"
	"strings"

	"chatlens/internal/transcript"
)

// Result pairs one conversation with its match count for the current query.
type Result struct {
	Conversation transcript.Conversation
	MatchCount   int
}

// Run filters and ranks conversations for a query. Conversations at or below
// minMessages are excluded before matching. An empty query keeps every
// conversation (past the message filter) in its original order with zero
// counts. Otherwise conversations without a match drop from the view and the
// rest sort by descending match count; ties keep encounter order.
func Run(conversations []transcript.Conversation, query string, minMessages int) ([]Result, int) {
	query = strings.ToLower(strings.TrimSpace(query))

	results := make([]Result, 0, len(conversations))
	total := 0
	for _, conv := range conversations {
		if conv.MessageCount <= minMessages {
			continue
		}
		if query == "" {
			results = append(results, Result{Conversation: conv})
			continue
		}
		count := strings.Count(conv.SearchText, query)
		if count == 0 {
			continue
		}
		total += count
		results = append(results, Result{Conversation: conv, MatchCount: count})
	}

	if query != "" {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].MatchCount > results[j].MatchCount
		})
	}
	return results, total
}
