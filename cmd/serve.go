package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/threadstead/threadstead/internal/server"
)

// serveCmd starts the live-preview server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the template preview server",
	Long: `Start the preview server: compiled profile pages for every template
under the scan paths, a component catalog endpoint, and hot reload over
WebSocket when watched files change.

Examples:
  threadstead serve
  threadstead serve --port 9000`,
	RunE: runServeCommand,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8930, "Port to listen on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-reload", false, "Disable hot reload")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, logger, reg, comp, err := buildPipeline()
	if err != nil {
		return err
	}

	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.Development.HotReload = false
	}

	srv, err := server.New(cfg, logger, reg, comp)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
