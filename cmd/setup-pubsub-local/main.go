package main

import (
	"context"
	"fmt"
	"time"

	"coursehub/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type setupConfig struct {
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID" required:"true"`
	TelemetryTopic     string `envconfig:"TELEMETRY_TOPIC" default:"coursehub-errors"`
	PubSubEmulatorHost string `envconfig:"PUBSUB_EMULATOR_HOST" required:"true"`
	Reset              bool   `envconfig:"PUBSUB_RESET" default:"false"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on system environment variables.")
	}

	logger := logger.New()
	logger.Info().Msg("Starting Pub/Sub setup for the local emulator.")

	var cfg setupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID,
		option.WithEndpoint(cfg.PubSubEmulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Msgf("Failed to close pubsub client: %v", err)
		}
	}()

	if cfg.Reset {
		resetLocalEmulator(ctx, client, logger)
	}
	if err := ensureTelemetryResources(ctx, client, logger, cfg.TelemetryTopic); err != nil {
		logger.Fatal().Err(err).Msg("Pub/Sub setup failed")
	}
	logger.Info().Msg("Pub/Sub setup for the local emulator complete.")
}

// resetLocalEmulator deletes every topic and subscription. Emulator only.
func resetLocalEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list subscriptions: %v", err)
		}
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete subscription %s: %v", sub.ID(), err)
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list topics: %v", err)
		}
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete topic %s: %v", topic.ID(), err)
		}
	}
	logger.Info().Msg("Emulator reset.")
}

// ensureTelemetryResources creates the error telemetry topic and a pull
// subscription on it so captured errors can be read back locally.
func ensureTelemetryResources(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID string) error {
	retention := 7 * 24 * time.Hour

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking topic %s: %w", topicID, err)
	}
	if !exists {
		logger.Info().Msgf("Creating topic: %s with %v retention", topicID, retention)
		if topic, err = client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: retention}); err != nil {
			return fmt.Errorf("creating topic %s: %w", topicID, err)
		}
	} else {
		logger.Info().Msgf("Topic %s already exists.", topicID)
	}

	subID := topicID + "-sub"
	sub := client.Subscription(subID)
	exists, err = sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking subscription %s: %w", subID, err)
	}
	if exists {
		logger.Info().Msgf("Subscription %s already exists.", subID)
		return nil
	}
	logger.Info().Msgf("Creating pull subscription: %s", subID)
	_, err = client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{
		Topic:             topic,
		AckDeadline:       60 * time.Second,
		RetentionDuration: retention,
		ExpirationPolicy:  31 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("creating subscription %s: %w", subID, err)
	}
	return nil
}
