package summary

import (
	"fmt"
	"strings"

	"chatlens/internal/transcript"
)

// Anchor links one summary phrase back to the message it came from.
type Anchor struct {
	Text         string `json:"text"`
	MessageIndex int    `json:"messageIndex"`
	AnchorID     string `json:"anchorId"`
}

// Summary is the cheap per-scan description of a conversation.
type Summary struct {
	Text    string
	Bullets []string
	Anchors []Anchor
}

type phrase struct {
	text         string
	messageIndex int
}

// Generate runs the tier-1 scan: every message is checked against the verb
// list, phrases within the length window are collected with near-duplicate
// suppression, and a filename fallback fills in when fewer than three
// phrases were found.
func Generate(messages []transcript.Message, opts Options) Summary {
	phrases := collectPhrases(messages, opts)

	if len(phrases) < 3 {
		phrases = append(phrases, fileMentionPhrases(messages, opts, 2)...)
	}

	if len(phrases) == 0 {
		bullet := fmt.Sprintf("%d message conversation", len(messages))
		return Summary{Text: "- " + bullet, Bullets: []string{bullet}}
	}

	if len(phrases) > opts.MaxBullets {
		phrases = phrases[:opts.MaxBullets]
	}

	s := Summary{}
	var lines []string
	for _, p := range phrases {
		anchor := Anchor{
			Text:         p.text,
			MessageIndex: p.messageIndex,
			AnchorID:     fmt.Sprintf("msg-%d", p.messageIndex),
		}
		s.Anchors = append(s.Anchors, anchor)
		s.Bullets = append(s.Bullets, p.text)
		lines = append(lines, fmt.Sprintf("- %s [→](#%s)", p.text, anchor.AnchorID))
	}
	s.Text = strings.Join(lines, "\n")
	return s
}

func collectPhrases(messages []transcript.Message, opts Options) []phrase {
	var kept []phrase
	seen := make(map[string]struct{})

	for _, verb := range opts.Verbs {
		if len(kept) >= opts.MaxPhrases {
			break
		}
		re := opts.verbPattern(verb)
		for _, msg := range messages {
			if len(kept) >= opts.MaxPhrases {
				break
			}
			for _, m := range re.FindAllStringSubmatch(msg.Content, -1) {
				remainder := clean(sentenceCut(m[1]))
				if len(remainder) <= opts.MinPhraseLen || len(remainder) >= opts.MaxPhraseLen {
					continue
				}
				key := dedupeKey(remainder, opts.DedupePrefixLen)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				kept = append(kept, phrase{
					text:         strings.ToLower(verb) + " " + remainder,
					messageIndex: msg.Index,
				})
				if len(kept) >= opts.MaxPhrases {
					break
				}
			}
		}
	}
	return kept
}

// fileMentionPhrases scans the concatenated conversation text for
// filename-like tokens and turns up to limit of them into "worked on"
// phrases, each attributed to the first message mentioning the file.
func fileMentionPhrases(messages []transcript.Message, opts Options, limit int) []phrase {
	re := opts.filePattern()
	seen := make(map[string]struct{})
	var out []phrase

	for _, msg := range messages {
		for _, file := range re.FindAllString(msg.Content, -1) {
			if _, dup := seen[file]; dup {
				continue
			}
			seen[file] = struct{}{}
			out = append(out, phrase{
				text:         "worked on " + file,
				messageIndex: msg.Index,
			})
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func dedupeKey(cleaned string, prefixLen int) string {
	if len(cleaned) > prefixLen {
		return cleaned[:prefixLen]
	}
	return cleaned
}
