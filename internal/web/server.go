// Package web serves the viewer: a browsable conversation list, highlighted
// conversation pages, Markdown export, and a raw view of the catalog.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"chatlens/internal/catalog"
	"chatlens/internal/config"
	"chatlens/internal/export"
	"chatlens/internal/transcript"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	reader   *transcript.Reader
	store    *catalog.Store
	analyzer *catalog.Analyzer
	exporter *export.Exporter
	cache    *scanCache
	watcher  *watcher
	logger   *zap.Logger
}

func NewServer(cfg *config.Config, reader *transcript.Reader, store *catalog.Store, analyzer *catalog.Analyzer, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"shortTime": shortTime,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{tmpl: tmpl}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		cfg:      cfg,
		reader:   reader,
		store:    store,
		analyzer: analyzer,
		exporter: export.New(cfg.Export.Dir),
		cache:    newScanCache(reader, logger),
		logger:   logger,
	}
	s.registerRoutes()

	if cfg.Server.Watch {
		w, err := newWatcher(reader.Root(), s.cache, logger)
		if err != nil {
			logger.Warn("log watcher unavailable", zap.Error(err))
		} else {
			s.watcher = w
		}
	}

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleList)
	s.echo.GET("/c/:project/:id", s.handleConversation)
	s.echo.GET("/c/:project/:id/export", s.handleExport)
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/index", s.handleIndexDump)
	api.POST("/analyze", s.handleAnalyze)
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info("serving", zap.String("addr", "http://"+addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	return s.echo.Shutdown(ctx)
}

type renderer struct {
	tmpl *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

func shortTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Local().Format("2006-01-02 15:04")
}
