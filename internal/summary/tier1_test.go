package summary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlens/internal/transcript"
)

func msgs(contents ...string) []transcript.Message {
	out := make([]transcript.Message, len(contents))
	for i, c := range contents {
		role := transcript.RoleUser
		if i%2 == 1 {
			role = transcript.RoleAssistant
		}
		out[i] = transcript.Message{Role: role, Content: c, Index: i}
	}
	return out
}

func TestGenerateExtractsVerbPhrases(t *testing.T) {
	s := Generate(msgs(
		"created a login page",
		"fixed the auth bug in app.js",
	), DefaultOptions())

	// Two verb phrases plus the file-mention fallback (fewer than three
	// phrases were found, and app.js is mentioned).
	require.Len(t, s.Anchors, 3)
	assert.Equal(t, "created a login page", s.Bullets[0])
	assert.Equal(t, "fixed the auth bug in appjs", s.Bullets[1])
	assert.Equal(t, "worked on app.js", s.Bullets[2])
	assert.Equal(t, 0, s.Anchors[0].MessageIndex)
	assert.Equal(t, "msg-0", s.Anchors[0].AnchorID)
	assert.Equal(t, 1, s.Anchors[1].MessageIndex)
	assert.Equal(t, "msg-1", s.Anchors[1].AnchorID)
	assert.Contains(t, s.Text, "[→](#msg-0)")
}

func TestGenerateLengthWindow(t *testing.T) {
	s := Generate(msgs(
		"created x",                // cleaned remainder too short
		"implemented "+longPhrase, // too long
		"built the parser module", // kept
	), DefaultOptions())

	require.Len(t, s.Bullets, 1)
	assert.Equal(t, "built the parser module", s.Bullets[0])
}

var longPhrase = func() string {
	s := ""
	for i := 0; i < 30; i++ {
		s += "word "
	}
	return s
}()

func TestGenerateDedupesByPrefix(t *testing.T) {
	s := Generate(msgs(
		"created the settings page for users",
		"created the settings page for admins too",
	), DefaultOptions())

	require.Len(t, s.Bullets, 1)
}

func TestGenerateFileFallback(t *testing.T) {
	s := Generate(msgs(
		"let's look at main.go and util.py today",
	), DefaultOptions())

	require.NotEmpty(t, s.Bullets)
	assert.Equal(t, "worked on main.go", s.Bullets[0])
	assert.Equal(t, 0, s.Anchors[0].MessageIndex)
}

func TestGenerateFallbackBullet(t *testing.T) {
	s := Generate(msgs("hello", "hi there"), DefaultOptions())

	require.Len(t, s.Bullets, 1)
	assert.Equal(t, "2 message conversation", s.Bullets[0])
	assert.Empty(t, s.Anchors, "fallback bullet carries no anchor")
}

func TestGenerateCapsBullets(t *testing.T) {
	var contents []string
	for i := 0; i < 6; i++ {
		contents = append(contents, fmt.Sprintf("created widget number %d for the dashboard", i))
	}
	s := Generate(msgs(contents...), DefaultOptions())

	assert.LessOrEqual(t, len(s.Bullets), DefaultOptions().MaxBullets)
}

func TestGenerateDeterministic(t *testing.T) {
	m := msgs("created a login page", "fixed the auth bug in app.js")
	assert.Equal(t, Generate(m, DefaultOptions()), Generate(m, DefaultOptions()))
}
