package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileHeadingPrefix starts every file-content heading emitted for Write/Read
// tool invocations. Highlighting skips lines with this prefix so file names
// inside headings never pick up match markers.
const FileHeadingPrefix = "📄 "

type logRecord struct {
	Type        string          `json:"type"`
	IsSidechain bool            `json:"isSidechain"`
	Timestamp   string          `json:"timestamp"`
	Content     json.RawMessage `json:"content,omitempty"`
	Message     *chatMessage    `json:"message,omitempty"`
}

type chatMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Normalize parses one raw log line into a Message. The second return is
// false when the line is blank, malformed, or structurally irrelevant
// (sidechain records, unknown types); no error ever escapes this boundary.
func Normalize(line []byte) (Message, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Message{}, false
	}

	var rec logRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return Message{}, false
	}
	if rec.IsSidechain {
		return Message{}, false
	}

	switch rec.Type {
	case "user":
		return normalizeUser(rec)
	case "assistant":
		return normalizeAssistant(rec)
	case "tool_result", "system":
		return normalizeToolResult(rec)
	}
	return Message{}, false
}

func normalizeUser(rec logRecord) (Message, bool) {
	if rec.Message == nil || rec.Message.Role != "user" {
		return Message{}, false
	}
	var content string
	if err := json.Unmarshal(rec.Message.Content, &content); err != nil {
		return Message{}, false
	}
	return finish(Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: parseTimestamp(rec.Timestamp),
	}), true
}

func normalizeAssistant(rec logRecord) (Message, bool) {
	if rec.Message == nil || rec.Message.Role != "assistant" {
		return Message{}, false
	}

	var content string
	if err := json.Unmarshal(rec.Message.Content, &content); err != nil {
		var blocks []contentBlock
		if err := json.Unmarshal(rec.Message.Content, &blocks); err != nil {
			return Message{}, false
		}
		content = renderBlocks(blocks)
	}

	return finish(Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: parseTimestamp(rec.Timestamp),
		Model:     rec.Message.Model,
	}), true
}

func normalizeToolResult(rec logRecord) (Message, bool) {
	raw := rec.Content
	if len(raw) == 0 && rec.Message != nil {
		raw = rec.Message.Content
	}
	content := stringify(raw)
	return finish(Message{
		Role:      RoleToolResult,
		Content:   content,
		Timestamp: parseTimestamp(rec.Timestamp),
	}), true
}

func finish(m Message) Message {
	if strings.TrimSpace(m.Content) != "" {
		m.Rendered = render(m)
	}
	return m
}

func render(m Message) string {
	if m.Role == RoleToolResult {
		return "```text\n" + strings.TrimSpace(m.Content) + "\n```"
	}
	return m.Content
}

func renderBlocks(blocks []contentBlock) string {
	var b strings.Builder
	for _, blk := range blocks {
		part := ""
		switch blk.Type {
		case "text":
			part = blk.Text
		case "tool_use":
			part = renderToolUse(blk)
		default:
			if raw, err := json.Marshal(blk); err == nil {
				part = string(raw)
			}
		}
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(part)
	}
	return b.String()
}

func renderToolUse(blk contentBlock) string {
	if blk.Name == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("🔧 Tool: " + blk.Name)

	var input map[string]any
	if len(blk.Input) > 0 {
		if err := json.Unmarshal(blk.Input, &input); err == nil && len(input) > 0 {
			if pretty, err := json.MarshalIndent(input, "", "  "); err == nil {
				b.WriteString("\n```json\n")
				b.Write(pretty)
				b.WriteString("\n```")
			}
		}
	}

	if section := fileSection(blk.Name, input); section != "" {
		b.WriteString("\n\n" + section)
	}
	return b.String()
}

// fileSection renders the file a Write/Read tool invocation touches as its
// own block, headed by just the base name. Markdown files go between plain
// delimiters so their own headings stay literal; everything else is fenced
// with a language hint from the extension.
func fileSection(tool string, input map[string]any) string {
	path, _ := input["file_path"].(string)
	if path == "" {
		return ""
	}

	base := filepath.Base(path)
	heading := FileHeadingPrefix + base

	var content string
	switch tool {
	case "Write", "Edit":
		content, _ = input["content"].(string)
		if content == "" {
			content, _ = input["new_string"].(string)
		}
		if content == "" {
			return ""
		}
	case "Read":
		return heading
	default:
		return ""
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "md" || ext == "markdown" {
		return heading + "\n---\n" + content + "\n---"
	}
	return fmt.Sprintf("%s\n```%s\n%s\n```", heading, langHint(ext), content)
}

func langHint(ext string) string {
	switch ext {
	case "py":
		return "python"
	case "ts", "tsx":
		return "typescript"
	case "js", "jsx":
		return "javascript"
	case "go":
		return "go"
	case "rs":
		return "rust"
	case "rb":
		return "ruby"
	case "sh", "bash":
		return "bash"
	case "c", "h":
		return "c"
	case "cpp", "cc", "hpp":
		return "cpp"
	case "java":
		return "java"
	case "html":
		return "html"
	case "css":
		return "css"
	case "json":
		return "json"
	case "yml", "yaml":
		return "yaml"
	case "toml":
		return "toml"
	case "sql":
		return "sql"
	default:
		return "text"
	}
}

func stringify(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func anchorID(index int) string {
	return fmt.Sprintf("msg-%d", index)
}
