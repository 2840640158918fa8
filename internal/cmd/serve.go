package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatlens/internal/web"
)

var flagWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if cmd.Flags().Changed("watch") {
			a.cfg.Server.Watch = flagWatch
		}

		server, err := web.NewServer(a.cfg, a.reader, a.store, a.analyzer, a.logger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "watch the logs directory for changes")
}
