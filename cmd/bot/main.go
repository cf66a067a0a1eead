package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/bot"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/session"
	"github.com/domino14/dobutsu/store"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if level, err := zerolog.ParseLevel(cfg.GetString(config.ConfigLogLevel)); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player, err := aibot.NewPlayer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-difficulty-presets")
	}

	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL), nats.Name("dobutsu-bot"))
	if err != nil {
		log.Fatal().Err(err).Msg("nats-connect")
	}

	db, err := store.Open(cfg.GetString(config.ConfigDBPath))
	if err != nil {
		log.Fatal().Err(err).Msg("opening-game-store")
	}
	defer db.Close()

	registry := session.NewRegistry(
		bot.NewBroadcaster(nc, cfg.GetString(config.ConfigRoomSubjectPrefix)), cfg.Rules())
	registry.SetArchiver(db)

	done := make(chan error, 1)
	go func() {
		done <- bot.Main(ctx, nc, bot.NewService(cfg, player, registry))
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		log.Info().Msg("got quit signal...")
		select {
		case err = <-done:
		case <-time.After(GracefulShutdownTimeout):
			err = fmt.Errorf("bot did not drain within %v", GracefulShutdownTimeout)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("bot-exited")
	}
	log.Info().Msg("server gracefully shutting down")
}
