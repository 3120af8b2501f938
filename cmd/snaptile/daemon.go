package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snaptile/snaptile/internal/config"
	"github.com/snaptile/snaptile/internal/daemon"
	"github.com/snaptile/snaptile/internal/engine"
	"github.com/snaptile/snaptile/internal/ipc"
	"github.com/snaptile/snaptile/internal/platform"
)

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	log.Printf("Configuration loaded (inner gap: %dpx, snap threshold: %dpx)",
		cfg.InnerGap, cfg.SnapThreshold)

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	eng := engine.New(backend, cfg, logger)
	defer eng.Close()
	log.Println("Tiling engine initialized")

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, eng, backend, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := daemon.NewDragWatcher(backend, eng,
		time.Duration(cfg.PollIntervalMS)*time.Millisecond, logger)
	go watcher.Run(ctx)

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, eng)

	// Immediate pass clears entries left over from a previous daemon
	// lifecycle before the first periodic tick.
	reconciler.ReconcileNow()
	go reconciler.Run(ctx)

	log.Println("snaptile daemon started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				newCfg, err := config.Load()
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				ipcServer.UpdateConfig(newCfg)
				eng.Reload(newCfg)
				log.Println("Config reloaded successfully")

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down snaptile daemon...")
				return
			}

		case <-reloadChan:
			// Config was reloaded via IPC; the server already holds it.
			eng.Reload(ipcServer.GetConfig())
			log.Println("Config reloaded via IPC")
		}
	}
}

// newLogger builds the daemon's structured logger from config. The returned
// close function releases the log file, if any.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}
