package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/logging"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/server"
)

var (
	serveAddr       string
	serveProvider   string
	serveModel      string
	serveOllamaHost string
	serveOrigins    []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask/query/chart API over HTTP",
	Example: `  zoogist serve --addr :8080
  curl -s localhost:8080/api/ask -d '{"question":"Which habitat has the most animals?"}'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := serveAddr
		if addr == "" && cfg != nil {
			addr = cfg.ServeAddr
		}
		if addr == "" {
			addr = ":8080"
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sess := buildSession(ctx, cfg, serviceOptions{
			Runtime:   runtimeOptions{ProviderFlag: serveProvider, OllamaHost: serveOllamaHost},
			Model:     serveModel,
			WithAgent: true,
			Registry:  reg,
		})
		if sess.agentErr != nil {
			pterm.Warning.Printfln("Questions are disabled: %v", sess.agentErr)
		}

		srv := server.New(sess.svc, server.Options{
			Logger:       logging.L(),
			Registry:     reg,
			AllowOrigins: serveOrigins,
		})
		pterm.Info.Printfln("Serving %d sightings on %s", sess.store.Len(), addr)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config serve_addr)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "model provider for /api/ask")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "model for /api/ask")
	serveCmd.Flags().StringVar(&serveOllamaHost, "ollama-host", "", "override Ollama host")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "CORS origins to allow (default all)")
}
