package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aquameter-labs/aquameter/internal/api"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Start the HTTP server backing the water dashboard.

The server replays the hourly usage CSV tick by tick, exposes metrics,
stream and recommendation endpoints, accepts budget and manual entry
changes, and answers chat messages.`,
		Example: `  # Serve with defaults (usage_real.csv, :8000)
  aquameter serve

  # Custom address, reload the CSV when it changes
  aquameter serve --listen-addr :9000 --watch`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())
	r := GetRenderer(cmd.Context())

	if _, err := os.Stat(cfg.DataPath); os.IsNotExist(err) {
		return fmt.Errorf("usage data not found at %s (generate it with 'aquameter scenario' or import a dataset)", cfg.DataPath)
	}

	eng, cleanup, err := openEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(api.Config{
		Engine:   eng,
		Addr:     cfg.ListenAddr,
		Watch:    cfg.Watch,
		DataPath: cfg.DataPath,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.Info("Serving dashboard API on %s", cfg.ListenAddr)
	r.Info("Press Ctrl+C to stop")

	return server.Serve(ctx)
}
