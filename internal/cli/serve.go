package cli

import (
	"essaylens/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive report over HTTP",
	Long: `Start an HTTP server that displays one analysis result and proxies the
analysis service.

Available endpoints:
- GET /report: Interactive report of the displayed result
- GET /report/print: Print-ready A4 document
- POST /api/report: Replace the displayed result
- DELETE /api/report: Clear the displayed result
- POST /api/analyze: Analyze an essay and display the result
- POST /api/export: Export the displayed result as PDF
- GET /api/organizations: Organization catalogue
- POST /api/upload/pdf: Upload a PDF to the analysis service
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

Use --watch to display a result file and reload it whenever it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("watch", "", "Result file to display and reload on change")

	bindFlag(serveCmd, "server.port", "port", false)
	bindFlag(serveCmd, "server.host", "host", false)
	bindFlag(serveCmd, "server.watchFile", "watch", false)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      &cfg.Server.RateLimit,
		WatchFile:      cfg.Server.WatchFile,
		WatchDebounce:  cfg.Server.WatchDebounce,
	}
	return server.NewServer(cfg, serverCfg, logger).Start()
}
