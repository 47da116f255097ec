package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/petems/hotkeyd/internal/app"
	"github.com/petems/hotkeyd/internal/config"
	"github.com/petems/hotkeyd/internal/logging"
	"github.com/petems/hotkeyd/internal/manager"
	"github.com/petems/hotkeyd/internal/relay"
	"github.com/petems/hotkeyd/internal/tray"
	"github.com/petems/hotkeyd/internal/x11"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	configFlag := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/hotkeyd/config.json)")
	noTrayFlag := flag.Bool("no-tray", false, "Run without the status tray")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("hotkeyd %s (%s)\n", Version, Commit)
		return
	}

	// Load config from XDG_CONFIG_HOME or the given file
	var (
		cfg *config.Config
		err error
	)
	if *configFlag != "" {
		cfg, err = config.LoadFile(*configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	// Grabs need a reachable X server
	warning, err := x11.CheckSession(os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("No X11 session")
	}
	if warning != "" {
		log.Warn().Msg(warning)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize hotkey manager
	hkManager, err := manager.New(ctx, manager.Options{
		PollInterval: cfg.PollInterval.Std(),
		Logger:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize hotkeys")
	}
	defer hkManager.Close()

	// Optional websocket relay
	var hub *relay.Hub
	if cfg.Relay.Addr != "" {
		hub = relay.NewHub(relay.Options{Addr: cfg.Relay.Addr, Logger: log})
		if err := hub.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start relay")
		}
		defer hub.Stop()
	}

	var trayUI *tray.UI
	if cfg.Tray && !*noTrayFlag {
		trayUI = tray.New(cfg.File(), Version, Commit, log)
	}

	appCfg := app.Config{
		Hotkeys: hkManager,
		Config:  cfg,
		Logger:  log,
	}
	// Typed nils would defeat the app's nil checks.
	if trayUI != nil {
		appCfg.StatusUpdater = trayUI
	}
	if hub != nil {
		appCfg.Relay = hub
	}
	application := app.New(appCfg)
	if trayUI != nil {
		trayUI.SetApp(application)
	}

	log.Info().Str("version", Version).Str("config", cfg.File()).Msg("hotkeyd starting...")

	if err := application.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("Some bindings could not be registered")
	}

	go func() {
		if err := application.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Dispatch error")
		}
	}()

	go func() {
		err := config.Watch(ctx, cfg.File(), log, func(next *config.Config) {
			if err := application.Reload(ctx, next); err != nil {
				log.Warn().Err(err).Msg("Reload applied with errors")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("Config watching disabled")
		}
	}()

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Info().Msg("Shutting down...")
		case <-hkManager.Done():
			log.Error().Msg("Hotkey worker stopped unexpectedly")
		}
		cancel()
	}()

	if trayUI != nil {
		// Tray UI - MUST run on main thread
		if err := trayUI.Run(ctx, cancel); err != nil {
			log.Error().Err(err).Msg("Tray error")
		}
	} else {
		<-ctx.Done()
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
