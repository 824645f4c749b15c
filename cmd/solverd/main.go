package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/cache"
	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/service"
	"github.com/domino14/cifras/store"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Msgf("Loaded config:\n%v", cfg.SanitizedSettings())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var history *store.Store
	if path := cfg.GetString(config.ConfigHistoryDB); path != "" {
		var err error
		history, err = store.Open(ctx, path)
		if err != nil {
			log.Fatal().Err(err).Msg("open-history")
		}
		defer history.Close()
	}

	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL), nats.Name("cifras-solverd"))
	if err != nil {
		log.Fatal().Err(err).Msg("nats-connect")
	}
	defer nc.Close()

	svc := service.New(cfg, cache.New(cfg.GetInt(config.ConfigCacheSize)), history)
	if err := svc.Serve(ctx, nc, cfg.GetString(config.ConfigNatsSubject)); err != nil {
		log.Error().Err(err).Msg("serve")
		return
	}
	log.Info().Msg("server gracefully shutting down")
}
