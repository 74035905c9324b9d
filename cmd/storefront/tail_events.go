package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/messaging/kafka"
)

var tailGroupID string

var tailEventsCmd = &cobra.Command{
	Use:   "tail-events",
	Short: "Log every event on the cart events topic",
	RunE:  runTailEvents,
}

func init() {
	tailEventsCmd.Flags().StringVar(&tailGroupID, "group", "storefront-tail", "Kafka consumer group")
}

func runTailEvents(cmd *cobra.Command, args []string) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is not set")
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	publisher, subscriber := kafka.NewKafkaBroker(cfg.KafkaBrokers, log)
	defer publisher.Close()

	log.Info("Tailing cart events", zap.String("topic", cfg.CartEventsTopic), zap.String("group", tailGroupID))
	subscriber.Consume(ctx, cfg.CartEventsTopic, tailGroupID, func(_ context.Context, payload []byte) error {
		var env entity.EventEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return fmt.Errorf("failed to decode event envelope: %w", err)
		}
		log.Info("Cart event", zap.String("type", env.Type), zap.ByteString("payload", env.Payload))
		return nil
	})
	return nil
}
