package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/ruleta/cmd/ruleta/shared"
	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/server"
	"github.com/lox/ruleta/internal/tui"
)

// PlayCmd runs a table locally with the terminal interface
type PlayCmd struct {
	Config   string `kong:"default='ruleta.hcl',help='Path to HCL config file (table block is used)'"`
	Balance  int    `kong:"help='Starting balance (overrides config)'"`
	Seconds  int    `kong:"help='Betting window in seconds (overrides config)'"`
	AutoSpin bool   `kong:"help='Spin automatically when the countdown expires'"`
	Seed     *int64 `kong:"help='Deterministic wheel seed (optional)'"`
	LogFile  string `kong:"help='Write debug logs to this file'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	table := cfg.EngineConfig()
	if c.Balance != 0 {
		table.InitialBalance = c.Balance
	}
	if c.Seconds != 0 {
		table.BettingSeconds = c.Seconds
		table.LastCallSeconds = min(table.LastCallSeconds, c.Seconds-1)
	}
	if c.AutoSpin {
		table.AutoSpin = true
	}

	// The terminal belongs to the TUI, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := shared.SetupLogger(logOut, "debug", false)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		opts = append(opts, engine.WithDrawer(randutil.Seeded(*c.Seed)))
	}
	eng, err := engine.New(table, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	model := tui.NewTUIModel(eng, events, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	eng.Start()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
