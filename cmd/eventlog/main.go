// Command eventlog consumes the campaign.events queue and appends one line
// per event to campaign.log in EVENT_LOG_DIR.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campaign-companion/internal/config"
	"github.com/iliyamo/campaign-companion/internal/logging"
	"github.com/iliyamo/campaign-companion/internal/queue"
)

func main() {
	cfg, err := config.LoadConsumer()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", queue.QueueName).Str("dir", cfg.Events.LogDir).Msg("event log consumer starting")
	if err := queue.NewConsumer(cfg.Events.RabbitMQURL, cfg.Events.LogDir).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("event log consumer stopped")
}
