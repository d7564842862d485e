package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/ruleta/cmd/ruleta/shared"
	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/server"
)

// ServerCmd serves one private table per WebSocket connection
type ServerCmd struct {
	Config   string `kong:"default='ruleta.hcl',help='Path to HCL config file'"`
	Addr     string `kong:"help='Listen address (overrides config)'"`
	Port     int    `kong:"help='Listen port (overrides config)'"`
	LogLevel string `kong:"help='Log level: debug, info, warn, error (overrides config)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
	Seed     *int64 `kong:"help='Deterministic wheel seed shared by every table (optional)'"`
	AutoSpin bool   `kong:"help='Spin automatically when the countdown expires'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.AutoSpin {
		cfg.Table.AutoSpin = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logOut := os.Stderr
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := shared.SetupLogger(logOut, cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}

	var opts []server.Option
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		opts = append(opts, server.WithEngineOptions(engine.WithDrawer(randutil.Seeded(*c.Seed))))
	}

	table := cfg.EngineConfig()
	s := server.NewServer(cfg.GetServerAddress(), table, logger, opts...)

	logger.Info("Starting ruleta server",
		"address", cfg.GetServerAddress(),
		"initial_balance", table.InitialBalance,
		"betting_seconds", table.BettingSeconds,
		"last_call_seconds", table.LastCallSeconds,
		"chips", table.Chips,
		"auto_spin", table.AutoSpin)

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	})
	return g.Wait()
}
