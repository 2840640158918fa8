package transcript

import (
	"strings"
	"testing"
)

func TestNormalizeUserStringContent(t *testing.T) {
	line := `{"type":"user","timestamp":"2026-01-15T10:30:00Z","message":{"role":"user","content":"hello world"}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Role != RoleUser {
		t.Errorf("role=%q, want user", msg.Role)
	}
	if msg.Content != "hello world" {
		t.Errorf("content=%q, want 'hello world'", msg.Content)
	}
	if msg.Rendered == "" {
		t.Error("expected rendered content for non-empty message")
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected parsed timestamp")
	}
}

func TestNormalizeAssistantTextAndToolUse(t *testing.T) {
	line := `{"type":"assistant","timestamp":"2026-01-15T10:31:00Z","message":{"role":"assistant","model":"m-1","content":[{"type":"text","text":"Let me check."},{"type":"tool_use","name":"Bash","id":"t1","input":{"command":"ls"}}]}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Role != RoleAssistant {
		t.Errorf("role=%q, want assistant", msg.Role)
	}
	if msg.Model != "m-1" {
		t.Errorf("model=%q, want m-1", msg.Model)
	}
	if !strings.Contains(msg.Content, "Let me check.") {
		t.Errorf("text block missing from content: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "🔧 Tool: Bash") {
		t.Errorf("tool invocation missing from content: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, `"command": "ls"`) {
		t.Errorf("tool input not pretty-printed: %q", msg.Content)
	}
}

func TestNormalizeWriteToolMarkdownFile(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Write","input":{"file_path":"/tmp/docs/notes.md","content":"# Hi"}}]}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg.Content, FileHeadingPrefix+"notes.md") {
		t.Errorf("file heading missing: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "---\n# Hi\n---") {
		t.Errorf("markdown file should use plain delimiters: %q", msg.Content)
	}
	if strings.Contains(msg.Content, "```text\n# Hi") {
		t.Errorf("markdown file must not be fenced: %q", msg.Content)
	}
}

func TestNormalizeWriteToolPythonFile(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Write","input":{"file_path":"/tmp/notes.py","content":"print(1)"}}]}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg.Content, "```python\nprint(1)\n```") {
		t.Errorf("expected python fence: %q", msg.Content)
	}
}

func TestNormalizeWriteToolUnknownExtension(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Write","input":{"file_path":"data.xyz","content":"abc"}}]}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg.Content, "```text\nabc\n```") {
		t.Errorf("unknown extension should fall back to text fence: %q", msg.Content)
	}
}

func TestNormalizeReadToolEmitsHeadingOnly(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Read","input":{"file_path":"/src/main.go"}}]}}`
	msg, ok := Normalize([]byte(line))
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg.Content, FileHeadingPrefix+"main.go") {
		t.Errorf("file heading missing: %q", msg.Content)
	}
}

func TestNormalizeToolResult(t *testing.T) {
	msg, ok := Normalize([]byte(`{"type":"tool_result","content":"file contents here"}`))
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Role != RoleToolResult {
		t.Errorf("role=%q, want tool_result", msg.Role)
	}
	if msg.Content != "file contents here" {
		t.Errorf("content=%q", msg.Content)
	}
	if !strings.HasPrefix(msg.Rendered, "```text") {
		t.Errorf("tool result should render fenced: %q", msg.Rendered)
	}
}

func TestNormalizeSystemStringifiesContent(t *testing.T) {
	msg, ok := Normalize([]byte(`{"type":"system","content":{"level":"warn"}}`))
	if !ok {
		t.Fatal("expected a message")
	}
	if !strings.Contains(msg.Content, `"level":"warn"`) {
		t.Errorf("non-string content should be serialized: %q", msg.Content)
	}
}

func TestNormalizeDrops(t *testing.T) {
	cases := map[string]string{
		"malformed json":     `{"type":"user","message":`,
		"blank":              "   ",
		"unknown type":       `{"type":"file-history-snapshot"}`,
		"sidechain":          `{"type":"user","isSidechain":true,"message":{"role":"user","content":"x"}}`,
		"user without role":  `{"type":"user","message":{"role":"assistant","content":"x"}}`,
		"user array content": `{"type":"user","message":{"role":"user","content":[{"type":"tool_result"}]}}`,
	}
	for name, line := range cases {
		if _, ok := Normalize([]byte(line)); ok {
			t.Errorf("%s: expected line to be dropped", name)
		}
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	lines := []string{
		``, `null`, `42`, `"string"`, `[]`,
		`{"type":"assistant"}`,
		`{"type":"assistant","message":{"role":"assistant","content":42}}`,
		`{"type":"tool_result"}`,
	}
	for _, line := range lines {
		// A drop is fine; a panic is not.
		_, _ = Normalize([]byte(line))
	}
}
