package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/iudanet/zonesync/internal/client/api"
	"github.com/iudanet/zonesync/internal/client/cli"
	"github.com/iudanet/zonesync/internal/client/iocli"
	"github.com/iudanet/zonesync/internal/client/storage/boltdb"
	"github.com/iudanet/zonesync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config")
	serverURL := flag.String("server", "", "Server URL")
	dbPath := flag.String("db", "", "Path to local database")
	clientID := flag.String("client-id", "", "Client id sent in hello")
	conflictMode := flag.String("conflict-mode", "", "server-wins, client-wins or merge")
	ackTimeout := flag.Duration("ack-timeout", 0, "Acknowledgement deadline")
	maxRetries := flag.Int("max-retries", 0, "Retransmissions before a zone is marked disconnected")
	noOptimistic := flag.Bool("no-optimistic", false, "Show edits only after the server confirms them")
	debug := flag.Bool("debug", false, "Verbose engine tracing")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			cfg.Server = *serverURL
		case "db":
			cfg.DBPath = *dbPath
		case "client-id":
			cfg.ClientID = *clientID
		case "conflict-mode":
			cfg.ConflictResolutionMode = config.Ptr(config.ConflictMode(*conflictMode))
		case "ack-timeout":
			cfg.AckTimeout = config.Ptr(*ackTimeout)
		case "max-retries":
			cfg.MaxRetries = config.Ptr(*maxRetries)
		case "no-optimistic":
			cfg.EnableOptimisticUpdates = config.Ptr(!*noOptimistic)
		case "debug":
			cfg.Debug = config.Ptr(*debug)
		}
	})

	// Проверяем настройки движка до открытия базы
	if _, err := config.New(cfg.Update); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Debug != nil && *cfg.Debug)

	os.Exit(run(stdio, logger, cfg, args[0], args[1:]))
}

func run(stdio iocli.IO, logger *slog.Logger, cfg config.ClientConfig, command string, args []string) int {
	// Создаем контекст, отменяемый по Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	boltStorage, err := boltdb.New(openCtx, cfg.DBPath)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Создаем API клиент
	apiClient := api.NewClient(cfg.Server)

	c := cli.New(stdio, logger, apiClient, boltStorage, cfg.Update, cfg.ClientID)

	// Выполняем команду
	if err := c.Run(ctx, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.PrintUsage(stdio)
		}
		return 1
	}
	return 0
}

// newLogger пишет в stderr, чтобы не мешать выводу команд
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func printVersion() {
	fmt.Printf("Zonesync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
