package transcript

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// Message is one normalized entry of a conversation log. Index is the
// position in the kept message list and doubles as the anchor id
// ("msg-{Index}") used by summaries and in-page navigation.
type Message struct {
	Role      Role
	Content   string
	Rendered  string
	Timestamp time.Time
	Model     string
	Index     int
}

// Conversation is one parsed log file. MessageCount is the raw non-blank
// line count of the source file, not len(Messages); catalog change
// detection depends on that exact value being stable across scans.
type Conversation struct {
	ID                  string
	ProjectName         string
	ProjectKey          string
	Messages            []Message
	MessageCount        int
	FirstMessagePreview string
	SearchText          string
	CreatedAt           time.Time
	ModifiedAt          time.Time
	LastMessageTime     time.Time
}

// Project is one directory of conversation logs under the logs root.
type Project struct {
	Key  string // encoded directory name, e.g. "-Users-eric-projects-foo"
	Name string // decoded display path, e.g. "/Users/eric/projects/foo"
	Dir  string // absolute path to the directory
}

func (m Message) AnchorID() string {
	return anchorID(m.Index)
}
