// Command ona is the 2D sprite host: it opens a window sized by
// config.ona, loads every module under modules/, and drives the frame
// loop until the window is closed.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"ona/host"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := host.LoadConfig("config.ona")
	if err != nil {
		logger.Fatal().Err(err).Msg("reading config.ona")
	}

	opts := host.OptionsFromConfig(cfg)
	opts.ModulesDir = "modules"
	opts.Logger = logger

	h, err := host.New(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("starting host")
	}
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h.Run(ctx)
}
