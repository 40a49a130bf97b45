package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"safepost/internal/app"
)

func main() {
	// The configured logger only exists once the app is built; bootstrap
	// failures are reported on a bare one.
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	a, err := app.New(context.Background())
	if err != nil {
		boot.Fatal().Err(err).Msg("initialization failed")
	}
	log := a.Logger()

	go func() {
		if err := a.Start(); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
