package cli

import (
	"fmt"

	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server over the configured database.

Examples:
  hourglass serve
  hourglass serve --addr :9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, database, err := openDB()
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(database, cfg)
	defer func() {
		_ = srv.Close()
	}()

	logger.Info("Starting API server", logger.F("addr", addr))
	fmt.Printf("Hourglass API listening on %s\n", addr)
	if err := srv.Start(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
