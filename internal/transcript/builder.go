package transcript

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const previewLimit = 200

// Load parses one log file into a Conversation.
func (r *Reader) Load(project Project, path string) (Conversation, error) {
	file, err := os.Open(path)
	if err != nil {
		return Conversation{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Conversation{}, fmt.Errorf("stat %s: %w", path, err)
	}

	conv := Conversation{
		ID:          strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		ProjectName: project.Name,
		ProjectKey:  project.Key,
		ModifiedAt:  stat.ModTime(),
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var search strings.Builder
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		conv.MessageCount++

		msg, ok := Normalize(line)
		if !ok {
			continue
		}
		msg.Index = len(conv.Messages)
		conv.Messages = append(conv.Messages, msg)

		if msg.Role == RoleUser || msg.Role == RoleAssistant {
			if search.Len() > 0 {
				search.WriteByte('\n')
			}
			search.WriteString(strings.ToLower(msg.Content))
		}
		if conv.FirstMessagePreview == "" && msg.Role == RoleUser {
			conv.FirstMessagePreview = trimPreview(msg.Content)
		}
		if !msg.Timestamp.IsZero() {
			if conv.CreatedAt.IsZero() {
				conv.CreatedAt = msg.Timestamp
			}
			conv.LastMessageTime = msg.Timestamp
		}
	}
	if err := scanner.Err(); err != nil {
		return Conversation{}, fmt.Errorf("scan %s: %w", path, err)
	}

	conv.SearchText = search.String()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = stat.ModTime()
	}
	return conv, nil
}

func trimPreview(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit-3] + "..."
}
