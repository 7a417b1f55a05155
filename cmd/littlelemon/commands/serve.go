package commands

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/messaging"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/order"
	"github.com/ashfaq-akash/LittleLemonApi/internal/server"
)

var servePort int

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Connect to the database, apply pending migrations and serve the API
until SIGINT or SIGTERM.

Examples:
  littlelemon serve                    # PostgreSQL from config.yaml
  littlelemon serve --store memory     # throwaway in-memory data
  littlelemon serve --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&storeKind, "store", "postgres", "Storage backend: postgres or memory")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	requestID := logger.GenerateRequestID()

	ctx, stop := signalContext()
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer closeStore()

	var events order.EventPublisher = messaging.Discard{}
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		events = messaging.NewPublisher(conn, log)
		log.Info("rabbitmq_connected", "Publishing order events", requestID, map[string]interface{}{
			"exchange": cfg.RabbitMQ.Exchange,
		})
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := server.New(cfg, st, events, log)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx, cfg.Server); err != nil {
		log.Error("service_failed", "HTTP server failed", requestID, err, nil)
		return err
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}
