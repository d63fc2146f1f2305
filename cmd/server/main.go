package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/server/handlers"
	"github.com/iudanet/zonesync/internal/server/middleware"
	"github.com/iudanet/zonesync/internal/server/storage"
	"github.com/iudanet/zonesync/internal/server/storage/sqlite"
	"github.com/iudanet/zonesync/internal/server/version"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	healthPath = "/api/v1/health"
	wsPath     = "/ws"

	handshakeBurst  = 20
	handshakeWindow = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config")
	addr := flag.String("addr", "", "Listen address (default :8080)")
	dbPath := flag.String("db", "", "Path to server database (default zonesync-server.db)")
	zonesFile := flag.String("zones", "", "YAML file with initial zones")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Флаги перекрывают файл
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "db":
			cfg.DBPath = *dbPath
		case "zones":
			cfg.ZonesFile = *zonesFile
		case "debug":
			cfg.Debug = *debug
		}
	})

	logger := newLogger(cfg.Debug)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zones, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := zones.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if cfg.ZonesFile != "" {
		seed, err := storage.LoadSeed(cfg.ZonesFile)
		if err != nil {
			return err
		}
		added, err := storage.Seed(ctx, zones, seed)
		if err != nil {
			return err
		}
		logger.Info("Zones seeded", "file", cfg.ZonesFile, "added", added, "total", len(seed))
	}

	maxVersion, err := zones.MaxVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read zone version: %w", err)
	}

	hub := handlers.NewZoneHub(logger, zones, version.NewClock(maxVersion))
	health := handlers.NewHealthHandler(logger, zones, Version)

	limiter := middleware.NewHandshakeLimiter(handshakeBurst, handshakeWindow, logger)
	defer limiter.Stop()

	mux := http.NewServeMux()
	mux.Handle(wsPath, limiter.Middleware(http.HandlerFunc(hub.ServeWS)))
	mux.HandleFunc(healthPath, health.Health)

	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{healthPath})(mux),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("Zonesync server listening",
			"addr", cfg.Addr,
			"db", cfg.DBPath,
			"version", Version,
			"zone_version", maxVersion,
		)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "clients", hub.ClientCount())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Shutdown не отслеживает hijacked websocket соединения, они закрываются вместе с процессом
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown failed", "error", err)
	}
	return srv.Close()
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func printVersion() {
	fmt.Printf("Zonesync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
