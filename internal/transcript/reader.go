package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentReads = 8

// Reader locates and loads conversation logs under a projects root laid out
// as <root>/<encoded-project>/<conversation-id>.jsonl.
type Reader struct {
	root   string
	logger *zap.Logger
}

func NewReader(root string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{root: root, logger: logger}
}

func (r *Reader) Root() string { return r.root }

// Projects lists the project directories under the root, sorted by name.
func (r *Reader) Projects() ([]Project, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects root %s: %w", r.root, err)
	}

	projects := make([]Project, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key := entry.Name()
		projects = append(projects, Project{
			Key:  key,
			Name: decodeProjectName(key),
			Dir:  filepath.Join(r.root, key),
		})
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// Project resolves a single project directory by its encoded key.
func (r *Reader) Project(key string) (Project, error) {
	if key == "" || key != filepath.Base(key) {
		return Project{}, fmt.Errorf("invalid project key %q", key)
	}
	dir := filepath.Join(r.root, key)
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return Project{}, fmt.Errorf("project %s not found", key)
	}
	return Project{Key: key, Name: decodeProjectName(key), Dir: dir}, nil
}

// Conversations loads every .jsonl file of one project. Files are read
// concurrently; a file that fails to load is logged and skipped so one bad
// log never sinks its siblings.
func (r *Reader) Conversations(ctx context.Context, project Project) ([]Conversation, error) {
	entries, err := os.ReadDir(project.Dir)
	if err != nil {
		return nil, fmt.Errorf("read project dir %s: %w", project.Dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		paths = append(paths, filepath.Join(project.Dir, entry.Name()))
	}
	sort.Strings(paths)

	results := make([]*Conversation, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			conv, err := r.Load(project, path)
			if err != nil {
				r.logger.Warn("skipping unreadable log",
					zap.String("path", path),
					zap.Error(err))
				return nil
			}
			results[i] = &conv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(results))
	for _, conv := range results {
		if conv != nil {
			conversations = append(conversations, *conv)
		}
	}
	return conversations, nil
}

// All loads every conversation of every project, newest first.
func (r *Reader) All(ctx context.Context) ([]Conversation, error) {
	projects, err := r.Projects()
	if err != nil {
		return nil, err
	}

	var all []Conversation
	for _, project := range projects {
		conversations, err := r.Conversations(ctx, project)
		if err != nil {
			r.logger.Warn("skipping unreadable project",
				zap.String("project", project.Key),
				zap.Error(err))
			continue
		}
		all = append(all, conversations...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].sortTime().After(all[j].sortTime())
	})
	return all, nil
}

// Find loads one conversation by project key and id.
func (r *Reader) Find(projectKey, id string) (Conversation, error) {
	project, err := r.Project(projectKey)
	if err != nil {
		return Conversation{}, err
	}
	if id == "" || id != filepath.Base(id) {
		return Conversation{}, fmt.Errorf("invalid conversation id %q", id)
	}
	path := filepath.Join(project.Dir, id+".jsonl")
	if _, err := os.Stat(path); err != nil {
		return Conversation{}, fmt.Errorf("conversation %s/%s not found", projectKey, id)
	}
	return r.Load(project, path)
}

func (c Conversation) sortTime() time.Time {
	if !c.LastMessageTime.IsZero() {
		return c.LastMessageTime
	}
	return c.ModifiedAt
}

// decodeProjectName turns an encoded project directory name back into a
// path, e.g. "-Users-eric-projects-foo" → "/Users/eric/projects/foo".
// Names without the leading dash are shown as-is.
func decodeProjectName(key string) string {
	if !strings.HasPrefix(key, "-") {
		return key
	}
	decoded := strings.ReplaceAll(key, "-", "/")
	if decoded == "" || decoded == "/" {
		return key
	}
	return filepath.Clean(decoded)
}
