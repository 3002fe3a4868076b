package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/iurnickita/seafoodpos/internal/auth"
	"github.com/iurnickita/seafoodpos/internal/config"
	"github.com/iurnickita/seafoodpos/internal/events"
	"github.com/iurnickita/seafoodpos/internal/handler"
	"github.com/iurnickita/seafoodpos/internal/logger"
	"github.com/iurnickita/seafoodpos/internal/service"
	"github.com/iurnickita/seafoodpos/internal/session"
	"github.com/iurnickita/seafoodpos/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()
	if cfg.Events.Brokers != "" {
		zaplog.Info("order events enabled", zap.String("brokers", cfg.Events.Brokers))
	}

	sessions := session.NewStore(cfg.Handler.TokenSecret, cfg.Handler.SecureCookie)
	auth := auth.NewAuth(store, sessions, cfg.Handler.TokenSecret, cfg.Handler.SecureCookie, zaplog)
	service, err := service.NewService(cfg.Service, store, publisher, zaplog)
	if err != nil {
		return err
	}

	return handler.Serve(cfg.Handler, auth, service, sessions, zaplog)
}
