package commands

import (
	"github.com/spf13/cobra"

	"github.com/ashfaq-akash/LittleLemonApi/internal/messaging"
	"github.com/ashfaq-akash/LittleLemonApi/internal/services/notification"
)

var (
	// Events flags
	eventsQueue    string
	eventsBinding  string
	eventsPrefetch int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with order events",
}

// eventsWatchCmd prints order events as they are published
var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print order events from RabbitMQ",
	Long: `Bind a queue to the order exchange and print one line per event.

Examples:
  littlelemon events watch                          # every event, temporary queue
  littlelemon events watch --binding order.updated  # status and assignment changes
  littlelemon events watch --queue order_notices    # durable queue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEventsWatch(cmd)
	},
}

func init() {
	eventsWatchCmd.Flags().StringVar(&eventsQueue, "queue", "", "Queue name (empty for a temporary exclusive queue)")
	eventsWatchCmd.Flags().StringVar(&eventsBinding, "binding", "order.*", "Routing key pattern to bind")
	eventsWatchCmd.Flags().IntVar(&eventsPrefetch, "prefetch", 10, "RabbitMQ prefetch count")

	eventsCmd.AddCommand(eventsWatchCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsWatch(cmd *cobra.Command) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := notification.NewSubscriber(cmd.OutOrStdout(), log)
	consumer := messaging.NewConsumer(conn, log, eventsQueue, eventsBinding, "littlelemon-watch", eventsPrefetch)
	return consumer.Run(ctx, sub.Handle)
}
