package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatlens/internal/catalog"
	"chatlens/internal/config"
	"chatlens/internal/logging"
	"chatlens/internal/summary"
	"chatlens/internal/transcript"
)

var (
	flagConfig   string
	flagLogsRoot string
)

var rootCmd = &cobra.Command{
	Use:   "chatlens",
	Short: "Local web viewer for chat transcript logs",
	Long: `chatlens scans a directory of JSONL conversation logs, keeps an
incremental summary catalog, and serves a browsable, searchable viewer.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogsRoot, "logs-root", "", "override the projects log directory")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
}

// app bundles the wired-up pieces every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	reader   *transcript.Reader
	store    *catalog.Store
	analyzer *catalog.Analyzer
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagLogsRoot != "" {
		root, err := config.DetectLogsRoot(flagLogsRoot)
		if err != nil {
			return nil, err
		}
		cfg.Logs.Root = root
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	opts := summary.DefaultOptions()
	reader := transcript.NewReader(cfg.Logs.Root, logger)
	store := catalog.NewStore(cfg.Catalog.Path, opts, logger)
	analyzer := catalog.NewAnalyzer(store, reader, opts, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		reader:   reader,
		store:    store,
		analyzer: analyzer,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
