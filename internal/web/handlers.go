package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chatlens/internal/catalog"
	"chatlens/internal/export"
	"chatlens/internal/search"
	"chatlens/internal/transcript"
)

type listPage struct {
	Query        string
	MinMessages  int
	Project      string
	Projects     []transcript.Project
	Rows         []listRow
	TotalMatches int
	Searching    bool
}

type listRow struct {
	ID            string
	ProjectKey    string
	ProjectName   string
	Preview       string
	OneLine       string
	Bullets       []string
	MessageCount  int
	MatchCount    int
	NeedsAnalysis bool
	When          time.Time
}

type conversationPage struct {
	ID           string
	ProjectKey   string
	ProjectName  string
	Query        string
	MatchCount   int
	MessageCount int
	Messages     []messageView
}

type messageView struct {
	AnchorID string
	Role     string
	Model    string
	When     time.Time
	HTML     template.HTML
}

func (s *Server) handleList(c echo.Context) error {
	query := c.QueryParam("q")
	project := c.QueryParam("project")
	minMessages := s.cfg.List.MinMessages
	if raw := c.QueryParam("min"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			minMessages = n
		}
	}

	convs, err := s.cache.conversations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "scanning logs failed")
	}
	entries, err := s.store.Sync(c.Request().Context(), convs)
	if err != nil {
		s.logger.Warn("catalog sync failed", zap.Error(err))
		entries = nil
	}

	byKey := make(map[string]catalog.Entry, len(entries))
	for _, e := range entries {
		byKey[e.Project+"/"+e.ID] = e
	}

	if project != "" {
		filtered := convs[:0:0]
		for _, conv := range convs {
			if conv.ProjectKey == project {
				filtered = append(filtered, conv)
			}
		}
		convs = filtered
	}

	results, total := search.Run(convs, query, minMessages)

	page := listPage{
		Query:        query,
		MinMessages:  minMessages,
		Project:      project,
		Rows:         make([]listRow, 0, len(results)),
		TotalMatches: total,
		Searching:    strings.TrimSpace(query) != "",
	}
	for _, res := range results {
		conv := res.Conversation
		row := listRow{
			ID:           conv.ID,
			ProjectKey:   conv.ProjectKey,
			ProjectName:  conv.ProjectName,
			Preview:      conv.FirstMessagePreview,
			MessageCount: conv.MessageCount,
			MatchCount:   res.MatchCount,
			When:         lastActivity(conv),
		}
		if entry, ok := byKey[conv.ProjectKey+"/"+conv.ID]; ok {
			row.OneLine = entry.OneLineSummary
			row.Bullets = entry.BulletSummary
			row.NeedsAnalysis = entry.NeedsAnalysis
		}
		page.Rows = append(page.Rows, row)
	}

	if projects, err := s.reader.Projects(); err == nil {
		page.Projects = projects
	}
	return c.Render(http.StatusOK, "index.html", page)
}

func (s *Server) handleConversation(c echo.Context) error {
	conv, err := s.reader.Find(c.Param("project"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	query := c.QueryParam("q")

	hl := search.NewHighlighter(query)
	page := conversationPage{
		ID:           conv.ID,
		ProjectKey:   conv.ProjectKey,
		ProjectName:  conv.ProjectName,
		Query:        query,
		MessageCount: conv.MessageCount,
		Messages:     make([]messageView, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		body := m.Rendered
		if body == "" {
			continue
		}
		highlighted := hl.ApplyHTML(body)
		page.Messages = append(page.Messages, messageView{
			AnchorID: m.AnchorID(),
			Role:     string(m.Role),
			Model:    m.Model,
			When:     m.Timestamp,
			HTML:     template.HTML(highlighted), //nolint:gosec // ApplyHTML escapes everything outside the markers
		})
	}
	page.MatchCount = hl.Matches()

	return c.Render(http.StatusOK, "conversation.html", page)
}

func (s *Server) handleExport(c echo.Context) error {
	conv, err := s.reader.Find(c.Param("project"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	md := export.Build(conv, c.QueryParam("q"), time.Now().UTC())
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", conv.ID+".md"))
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (s *Server) handleIndexDump(c echo.Context) error {
	data, err := s.store.Raw()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "catalog unreadable")
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	updated, err := s.analyzer.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func lastActivity(conv transcript.Conversation) time.Time {
	if !conv.LastMessageTime.IsZero() {
		return conv.LastMessageTime
	}
	return conv.ModifiedAt
}
