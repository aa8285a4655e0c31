package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/uidump/internal/api"
	"github.com/dgallion1/uidump/internal/config"
	"github.com/dgallion1/uidump/internal/device"
	"github.com/dgallion1/uidump/internal/store"
	"github.com/dgallion1/uidump/internal/uinode"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		log.Error("invalid .env file", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dump registry with background eviction.
	dumps := store.New(cfg.DumpTTL)
	go dumps.Run(ctx, 5*time.Minute)

	// Device access.
	adb := &device.ADB{Path: cfg.ADBPath, Serial: cfg.ADBSerial}
	stats := device.NewStats(cfg.StatsWindow)
	var resolution uinode.ResolutionProvider = &device.Retrying{
		Provider: adb,
		Attempts: cfg.DeviceRetries,
		Base:     cfg.DeviceRetryBase,
		Timeout:  cfg.DeviceTimeout,
		Stats:    stats,
		Log:      log,
	}
	if cfg.ScreenResolution != "" {
		resolution = device.Static{Value: cfg.ScreenResolution}
	}

	srv := api.NewServer(api.Deps{
		Dumps:      dumps,
		Resolution: resolution,
		Capturer:   adb,
		Stats:      stats,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting uidump", "port", cfg.Port, "static_resolution", cfg.ScreenResolution != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
