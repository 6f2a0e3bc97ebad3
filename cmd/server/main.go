package main // Entry point of the campaign companion API

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campaign-companion/internal/config"
	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/handler"
	"github.com/iliyamo/campaign-companion/internal/logging"
	"github.com/iliyamo/campaign-companion/internal/queue"
	"github.com/iliyamo/campaign-companion/internal/router"
	"github.com/iliyamo/campaign-companion/internal/service"
	"github.com/iliyamo/campaign-companion/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Env)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// events leave the request path through a bounded buffer drained by one goroutine
	var events service.EventPublisher
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	dispatchDone := make(chan struct{})
	if cfg.Events.RabbitMQURL != "" {
		publisher := queue.NewPublisher(cfg.Events.RabbitMQURL)
		defer publisher.Close()
		dispatcher := queue.NewDispatcher(publisher, cfg.Events.BufferSize)
		events = dispatcher
		go func() {
			defer close(dispatchDone)
			dispatcher.Run(dispatchCtx)
		}()
	} else {
		close(dispatchDone)
		log.Info().Msg("RABBITMQ_URL not set, campaign events are not published")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("redis unavailable, rate limiting per process")
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL)
	auth, err := service.NewAuthService(db, tokens, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("init auth service")
	}

	e := router.New(router.Deps{
		DB:             db,
		Tokens:         tokens,
		Redis:          rdb,
		RateLimit:      cfg.RateLimit,
		RequestTimeout: cfg.RequestTimeout,
		Auth:           handler.NewAuthHandler(auth),
		Campaigns:      handler.NewCampaignHandler(service.NewCampaignService(db, events)),
		Characters:     handler.NewCharacterHandler(service.NewCharacterService(db, events)),
		Messages:       handler.NewMessageHandler(service.NewMessageService(db, events)),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("driver", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	stopDispatch()
	<-dispatchDone // remaining events are flushed before the publisher closes
	log.Info().Msg("server stopped")
}
