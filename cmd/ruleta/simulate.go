package main

import (
	"fmt"
	"os"

	"github.com/lox/ruleta/cmd/ruleta/shared"
	"github.com/lox/ruleta/internal/simulator"
)

// SimulateCmd plays a strategy over many independent sessions
type SimulateCmd struct {
	Strategy string `kong:"default='red',help='Betting strategy: corner, dozen, martingale, red, spread, straight'"`
	Sessions int    `kong:"default='1000',help='Number of sessions to play'"`
	Rounds   int    `kong:"default='100',help='Maximum rounds per session'"`
	Unit     int    `kong:"default='100',help='Base stake per bet'"`
	Balance  int    `kong:"default='10000',help='Starting balance per session'"`
	Seed     int64  `kong:"default='42',help='Base seed; session i uses seed+i'"`
	Workers  int    `kong:"default='0',help='Parallel workers (0 uses GOMAXPROCS)'"`
	Out      string `kong:"help='Write a JSON report to this file'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.SetupLogger(os.Stderr, "info", c.Debug)
	if err != nil {
		return err
	}

	config := simulator.Config{
		Sessions:       c.Sessions,
		Rounds:         c.Rounds,
		Strategy:       c.Strategy,
		Unit:           c.Unit,
		InitialBalance: c.Balance,
		Seed:           c.Seed,
		Workers:        c.Workers,
		Logger:         logger,
	}
	sim, err := simulator.New(config)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	report := simulator.NewReport(config, stats)
	simulator.PrintSummary(os.Stdout, report)

	if c.Out != "" {
		if err := simulator.WriteReport(c.Out, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "file", c.Out)
	}
	return nil
}
