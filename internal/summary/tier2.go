package summary

import (
	"fmt"
	"strings"

	"chatlens/internal/transcript"
)

// Analysis is the heavier, on-demand tier-2 description. It never carries
// anchors; all three fields are presentation-only text.
type Analysis struct {
	OneLine   string
	Paragraph string
	Bullets   []string
}

// Analyze flattens the conversation into a role-tagged transcript and runs a
// coarser accomplishment and file-mention scan over the whole of it.
func Analyze(messages []transcript.Message, opts Options) Analysis {
	flat := flatten(messages)

	accomplishments := scanTranscript(flat, opts)
	files := scanFiles(flat, opts, 5)

	return Analysis{
		OneLine:   oneLine(messages, accomplishments, files),
		Paragraph: paragraph(messages, accomplishments, files),
		Bullets:   bullets(messages, accomplishments, files, opts.MaxAnalysisBullets),
	}
}

func flatten(messages []transcript.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String()
}

func scanTranscript(flat string, opts Options) []string {
	var found []string
	seen := make(map[string]struct{})

	for _, verb := range opts.Verbs {
		if len(found) >= opts.MaxPhrases {
			break
		}
		for _, m := range opts.verbPattern(verb).FindAllStringSubmatch(flat, -1) {
			remainder := clean(sentenceCut(m[1]))
			if len(remainder) <= opts.MinPhraseLen || len(remainder) >= opts.MaxPhraseLen {
				continue
			}
			key := dedupeKey(remainder, opts.DedupePrefixLen)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			found = append(found, remainder)
			if len(found) >= opts.MaxPhrases {
				break
			}
		}
	}
	return found
}

func scanFiles(flat string, opts Options, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, file := range opts.filePattern().FindAllString(flat, -1) {
		if _, dup := seen[file]; dup {
			continue
		}
		seen[file] = struct{}{}
		out = append(out, file)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func oneLine(messages []transcript.Message, accomplishments, files []string) string {
	if len(accomplishments) > 0 {
		if len(files) > 0 {
			return fmt.Sprintf("Worked on %s, touching %s.", accomplishments[0], files[0])
		}
		return fmt.Sprintf("Worked on %s.", accomplishments[0])
	}
	return fmt.Sprintf("%d-message conversation about %s.", len(messages), firstPrefix(messages))
}

func paragraph(messages []transcript.Message, accomplishments, files []string) string {
	var sentences []string

	if len(accomplishments) > 0 {
		sentences = append(sentences, fmt.Sprintf("The primary accomplishment was %s.", accomplishments[0]))
	} else {
		sentences = append(sentences, fmt.Sprintf("A conversation about %s.", firstPrefix(messages)))
	}
	if len(files) > 0 {
		sentences = append(sentences, fmt.Sprintf("Files involved: %s.", strings.Join(files, ", ")))
	}
	if len(accomplishments) > 1 {
		sentences = append(sentences, fmt.Sprintf("Also %s.", strings.Join(accomplishments[1:], "; ")))
	}
	sentences = append(sentences, fmt.Sprintf("The conversation spans %d messages with %d accomplishments identified.",
		len(messages), len(accomplishments)))

	if len(sentences) > 4 {
		sentences = sentences[:4]
	}
	return strings.Join(sentences, " ")
}

func bullets(messages []transcript.Message, accomplishments, files []string, max int) []string {
	var out []string
	for _, a := range accomplishments {
		out = append(out, "Implemented "+a)
	}
	for _, f := range files {
		out = append(out, "Worked with "+f)
	}
	out = append(out, fmt.Sprintf("%d messages total", len(messages)))
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func firstPrefix(messages []transcript.Message) string {
	for _, msg := range messages {
		if msg.Role != transcript.RoleUser {
			continue
		}
		s := strings.Join(strings.Fields(msg.Content), " ")
		if s == "" {
			continue
		}
		if len(s) > 60 {
			s = s[:60] + "..."
		}
		return s
	}
	return "an empty exchange"
}
