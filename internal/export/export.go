package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chatlens/internal/search"
	"chatlens/internal/transcript"
)

type Exporter struct {
	dir string
}

func New(dir string) *Exporter {
	return &Exporter{dir: strings.TrimSpace(dir)}
}

// Build renders a conversation as a Markdown document. When query is
// non-empty every case-insensitive literal occurrence in emitted text is
// bolded; the export format has no anchors to point at.
func Build(conv transcript.Conversation, query string, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Conversation " + conv.ID + "\n\n")
	b.WriteString("```text\n")
	b.WriteString("project: " + safeValue(conv.ProjectName) + "\n")
	b.WriteString("id: " + conv.ID + "\n")
	b.WriteString("exported: " + now.Format(time.RFC3339) + "\n")
	b.WriteString(fmt.Sprintf("messages: %d\n", conv.MessageCount))
	if strings.TrimSpace(query) != "" {
		b.WriteString("search: " + query + "\n")
	}
	b.WriteString("```\n\n")

	for _, m := range conv.Messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		content = embolden(content, query)

		switch m.Role {
		case transcript.RoleUser:
			b.WriteString("## You\n\n")
			b.WriteString(content + "\n\n")
		case transcript.RoleAssistant:
			header := "## Assistant"
			if m.Model != "" {
				header += " (" + m.Model + ")"
			}
			b.WriteString(header + "\n\n")
			b.WriteString(content + "\n\n")
		default:
			b.WriteString("## Tool result\n\n")
			b.WriteString("```text\n")
			b.WriteString(content + "\n")
			b.WriteString("```\n\n")
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}

// Write renders and persists the document, returning the file path.
func (e *Exporter) Write(conv transcript.Conversation, query string) (string, error) {
	dir := e.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve cwd: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, safeFileName(conv.ID)+".md")
	md := Build(conv, query, time.Now().UTC())
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

func embolden(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}

	spans := search.FoldSpans(text, query)
	if len(spans) == 0 {
		return text
	}

	var out strings.Builder
	last := 0
	for _, span := range spans {
		out.WriteString(text[last:span.Start])
		out.WriteString("**" + text[span.Start:span.End] + "**")
		last = span.End
	}
	out.WriteString(text[last:])
	return out.String()
}

func safeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "conversation"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(s)
}

func safeValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "n/a"
	}
	return s
}
