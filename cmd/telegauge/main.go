// main is the entry point of the Telegauge display unit.
// It initializes the configuration, logger, settings database and serial
// source, then runs the display tick loop until interrupted.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/telegauge/telegauge/internal/config"
	"github.com/telegauge/telegauge/internal/device"
	"github.com/telegauge/telegauge/internal/fake"
	"github.com/telegauge/telegauge/internal/logger"
	"github.com/telegauge/telegauge/internal/maintenance"
	"github.com/telegauge/telegauge/internal/netlink"
	"github.com/telegauge/telegauge/internal/render"
	"github.com/telegauge/telegauge/internal/serialio"
	"github.com/telegauge/telegauge/internal/storage"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)
	log.Info().Msg("Starting telegauge...")

	// Settings database
	store, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize settings database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing settings database")
		}
	}()

	// One-shot maintenance tasks
	if maintenance.Run(cfg, store) {
		return
	}

	// Telemetry source
	var src io.Reader
	if cfg.Serial.Demo {
		log.Info().Msg("Demo mode, generating synthetic telemetry")
		src = fake.NewGenerator()
	} else {
		port := serialio.NewPort(cfg.Serial.Port, cfg.Serial.Baud)
		defer port.Close()
		src = port
	}

	// Network collaborators, only when some network feature is on
	var link netlink.Link
	if cfg.Network.TimeSync || cfg.Weather.Enable || cfg.Network.Provisioning {
		link = netlink.NewManager(cfg.Network, cfg.Weather)
	}

	ctx, stop := context.WithCancel(context.Background())

	// The panel delivers key events from its own goroutine before the
	// device exists, hence the atomic indirection.
	var devPtr atomic.Pointer[device.Device]

	// Display surface
	var renderer render.Renderer
	if cfg.Display.Headless {
		renderer = render.NewHeadless()
	} else {
		panel, err := render.NewPanel(
			func() {
				if d := devPtr.Load(); d != nil {
					d.PressButton()
				}
			},
			stop,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize terminal panel")
		}
		renderer = panel
	}
	defer renderer.Close()

	dev := device.New(cfg, src, link, store, renderer)
	devPtr.Store(dev)

	// Graceful shutdown on signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		stop()
	}()

	dev.Run(ctx)

	log.Info().Msg("Display loop exited")
}
