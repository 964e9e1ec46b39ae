package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/server"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/config"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/logger"
)

var (
	host string
	port string
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "interface to bind, empty means all")
	Cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on, defaults to HTTP_PORT or 8080")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Serves upload, analyze, embed, and search endpoints plus health and
metrics probes. Shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port == "" {
			port = config.GetNetworkConfig().HTTPPort
		}

		environment := os.Getenv("ENVIRONMENT")
		zlog := logger.MustNew(environment != "production").Sugar()

		container := app.InitializeServiceContainer()

		srv := server.NewServer(server.Config{
			Host:         host,
			Port:         port,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  config.DefaultHTTPTimeout,
			Environment:  environment,
		}, container, zlog)

		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
