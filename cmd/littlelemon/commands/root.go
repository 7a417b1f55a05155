package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ashfaq-akash/LittleLemonApi/internal/config"
	"github.com/ashfaq-akash/LittleLemonApi/internal/database"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store/memory"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store/postgres"
)

const serviceName = "littlelemon"

var (
	// Global flags
	configPath string
	storeKind  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "littlelemon",
	Short: "Little Lemon restaurant ordering API",
	Long: `Little Lemon serves the restaurant's menu, carts and orders over HTTP.

Customers fill a cart and turn it into an order, managers run the catalog
and assign deliveries, and the delivery crew marks orders delivered.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file (empty for defaults)")
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(serviceName, cfg.Log.Level), nil
}

// openStore connects the configured backend. release closes it.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (st store.Store, release func(), err error) {
	switch storeKind {
	case "memory":
		log.Warn("store_memory", "Using the in-memory store; data is lost on exit", "", nil)
		return memory.New(), func() {}, nil
	case "", "postgres":
	default:
		return nil, nil, fmt.Errorf("unknown store %q: want postgres or memory", storeKind)
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if migrate {
		applied, err := db.RunMigrations(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations_applied", "Database schema is up to date", "", map[string]interface{}{
			"applied": applied,
		})
	}
	return postgres.New(db), db.Close, nil
}
