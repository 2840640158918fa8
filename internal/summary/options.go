// Package summary derives heuristic descriptions of a conversation from its
// message text. Everything here is pure and deterministic: the same messages
// always produce the same summaries. There is no NLP — just an ordered verb
// scan and a filename scan, with the knobs collected in Options so tests can
// pin them down.
package summary

import (
	"regexp"
	"strings"
)

type Options struct {
	// Verbs is scanned in order; earlier verbs win ties for the phrase list.
	Verbs []string
	// A phrase is kept only when its cleaned length is strictly between
	// MinPhraseLen and MaxPhraseLen.
	MinPhraseLen int
	MaxPhraseLen int
	// Phrases sharing their first DedupePrefixLen cleaned characters with an
	// already-kept phrase are treated as duplicates.
	DedupePrefixLen int
	// MaxPhrases bounds collection; MaxBullets bounds the rendered tier-1
	// summary; MaxAnalysisBullets bounds the tier-2 bullet list.
	MaxPhrases         int
	MaxBullets         int
	MaxAnalysisBullets int
	// FileExtensions recognized by the filename scan.
	FileExtensions []string
}

func DefaultOptions() Options {
	return Options{
		Verbs: []string{
			"created", "built", "implemented", "added", "fixed", "updated",
			"installed", "configured", "deployed", "setup", "wrote", "designed",
			"developed", "optimized", "refactored", "debugged", "resolved",
			"completed",
		},
		MinPhraseLen:       10,
		MaxPhraseLen:       100,
		DedupePrefixLen:    20,
		MaxPhrases:         5,
		MaxBullets:         3,
		MaxAnalysisBullets: 8,
		FileExtensions: []string{
			"go", "py", "js", "jsx", "ts", "tsx", "rb", "rs", "java", "c",
			"cpp", "h", "sh", "html", "css", "json", "yaml", "yml", "toml",
			"sql", "md",
		},
	}
}

func (o Options) verbPattern(verb string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(verb) + `\b[ \t]+([^\n]+)`)
}

// sentenceCut truncates at the first sentence-ending punctuation. A '.'
// inside a token (app.js, v1.2) does not end a sentence; only punctuation
// followed by whitespace or end of text does.
func sentenceCut(s string) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i == len(s)-1 || s[i+1] == ' ' || s[i+1] == '\t' {
				return s[:i]
			}
		}
	}
	return s
}

func (o Options) filePattern() *regexp.Regexp {
	return regexp.MustCompile(`\b[\w\-./]+\.(?:` + strings.Join(o.FileExtensions, "|") + `)\b`)
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)

// clean strips non-alphanumeric characters and collapses whitespace; phrase
// length checks and dedupe keys operate on this form.
func clean(s string) string {
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
