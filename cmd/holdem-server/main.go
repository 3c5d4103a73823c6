package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-table/internal/ledger"
	"github.com/lox/holdem-table/internal/server"
)

const shutdownTimeout = 10 * time.Second

var CLI struct {
	Config       string `short:"c" default:"holdem-server.hcl" env:"HOLDEM_CONFIG" help:"Path to HCL configuration file"`
	Addr         string `short:"a" env:"HOLDEM_ADDR" help:"Address to bind to as host:port (overrides config)"`
	LogLevel     string `short:"l" env:"HOLDEM_LOG_LEVEL" help:"Log level (overrides config)"`
	LedgerDriver string `env:"HOLDEM_LEDGER_DRIVER" help:"Ledger driver: memory, postgres or sqlite (overrides config)"`
	LedgerDSN    string `name:"ledger-dsn" env:"HOLDEM_LEDGER_DSN" help:"Ledger connection string (overrides config)"`
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("holdem-server"),
		kong.Description("Texas Hold'em table server"))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	logger.SetReportTimestamp(true)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*server.ServerConfig, error) {
	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		return nil, err
	}

	if CLI.Addr != "" {
		host, port, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid addr %q: %w", CLI.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid port in addr %q: %w", CLI.Addr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = p
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.LedgerDriver != "" {
		cfg.Ledger.Driver = CLI.LedgerDriver
	}
	if CLI.LedgerDSN != "" {
		cfg.Ledger.DSN = CLI.LedgerDSN
	}

	return cfg, cfg.Validate()
}

func run(cfg *server.ServerConfig, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN, cfg.Ledger.DefaultStack)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer func() {
		if err := book.Close(); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	}()

	// Validate has already parsed both durations.
	actionTimeout, _ := cfg.ActionTimeout()
	handDelay, _ := cfg.HandDelay()

	registry := server.NewRegistry(logger)
	wsServer := server.NewServer(registry, logger)
	clock := quartz.NewReal()

	for _, tc := range cfg.Tables {
		table := server.NewTable(server.TableOptions{
			Config:        tc,
			Ledger:        book,
			Notifier:      wsServer,
			Clock:         clock,
			Logger:        logger,
			ActionTimeout: actionTimeout,
			HandDelay:     handDelay,
			HistoryDir:    cfg.Server.HistoryDir,
		})
		if err := registry.Register(table); err != nil {
			return err
		}
		logger.Info("Created table",
			"name", tc.Name,
			"stakes", fmt.Sprintf("%d/%d", tc.SmallBlind, tc.BigBlind),
			"maxPlayers", tc.MaxPlayers,
			"minPlayers", tc.MinPlayers)
	}

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           wsServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting Holdem Server",
		"addr", cfg.GetServerAddress(),
		"tables", len(cfg.Tables),
		"ledger", cfg.Ledger.Driver)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		_ = wsServer.Shutdown(shutdownCtx)
		// Stacks are saved before the ledger closes.
		return errors.Join(err, registry.Close(shutdownCtx))
	})

	return g.Wait()
}
