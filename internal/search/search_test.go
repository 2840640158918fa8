package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlens/internal/transcript"
)

func searchConv(id, text string, count int) transcript.Conversation {
	return transcript.Conversation{ID: id, SearchText: text, MessageCount: count}
}

func TestRunRanksByMatchCount(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("one", "auth once: auth", 3),
		searchConv("many", "auth auth auth", 3),
		searchConv("none", "nothing relevant", 3),
	}

	results, total := Run(conversations, "auth", 0)

	require.Len(t, results, 2, "zero-match conversations drop out")
	assert.Equal(t, "many", results[0].Conversation.ID)
	assert.Equal(t, 3, results[0].MatchCount)
	assert.Equal(t, "one", results[1].Conversation.ID)
	assert.Equal(t, 2, results[1].MatchCount)
	assert.Equal(t, 5, total)
}

func TestRunTiesKeepEncounterOrder(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("first", "auth", 3),
		searchConv("second", "auth", 3),
	}

	results, _ := Run(conversations, "auth", 0)

	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Conversation.ID)
	assert.Equal(t, "second", results[1].Conversation.ID)
}

func TestRunCaseInsensitive(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("a", "the auth module and more auth talk", 3),
	}

	results, total := Run(conversations, "  AUTH ", 0)

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].MatchCount)
	assert.Equal(t, 2, total)
}

func TestRunEmptyQueryKeepsOrder(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("a", "whatever", 3),
		searchConv("b", "", 3),
	}

	results, total := Run(conversations, "", 0)

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Conversation.ID)
	assert.Zero(t, results[0].MatchCount)
	assert.Zero(t, total)
}

func TestRunMinMessagesFilter(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("short", "auth", 2),
		searchConv("exactly", "auth", 3),
		searchConv("long", "auth", 4),
	}

	results, _ := Run(conversations, "auth", 3)

	require.Len(t, results, 1, "conversations at or below the threshold are excluded")
	assert.Equal(t, "long", results[0].Conversation.ID)
}

func TestRunQueryNotInterpretedAsPattern(t *testing.T) {
	conversations := []transcript.Conversation{
		searchConv("dots", "a.c literal and abc not", 3),
	}

	results, total := Run(conversations, "a.c", 0)

	require.Len(t, results, 1)
	assert.Equal(t, 1, total, "metacharacters match themselves")
}
