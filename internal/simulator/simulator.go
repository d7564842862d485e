// Package simulator plays many independent roulette sessions against the
// round state machine to audit payouts and compare betting strategies.
package simulator

import (
	"context"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/statistics"
	"github.com/lox/ruleta/internal/table"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions       int
	Rounds         int // Maximum rounds per session
	Strategy       string
	Unit           int // Base stake
	InitialBalance int
	Seed           int64
	Workers        int
	Logger         *log.Logger

	// NewDrawer creates the wheel for a session. Defaults to a wheel
	// seeded with the session seed.
	NewDrawer func(seed int64) engine.Drawer
}

// Simulator runs roulette session simulations
type Simulator struct {
	config   Config
	strategy StrategyFactory
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Sessions <= 0 {
		return nil, fmt.Errorf("sessions must be positive: %d", config.Sessions)
	}
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive: %d", config.Rounds)
	}
	if config.Unit <= 0 {
		return nil, fmt.Errorf("unit stake must be positive: %d", config.Unit)
	}
	if config.InitialBalance == 0 {
		config.InitialBalance = table.DefaultInitialBalance
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.NewDrawer == nil {
		config.NewDrawer = func(seed int64) engine.Drawer { return randutil.Seeded(seed) }
	}

	factory, err := LookupStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	return &Simulator{config: config, strategy: factory}, nil
}

// Run plays every session and aggregates the results. Sessions run in
// parallel but are added to the statistics in session order, so a fixed
// seed always yields the same statistics.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	logger := s.config.Logger.WithPrefix("simulator")
	results := make([]statistics.SessionResult, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range results {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playSession(seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i+1, seed, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, result := range results {
		stats.Add(result)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	logger.Info("Simulation complete",
		"strategy", s.config.Strategy,
		"sessions", stats.Sessions,
		"rounds", stats.Rounds,
		"rtp", fmt.Sprintf("%.4f", stats.RTP()))
	return stats, nil
}

// playSession runs one bankroll through up to Rounds spins
func (s *Simulator) playSession(seed int64) (statistics.SessionResult, error) {
	state := table.NewRoundState(s.config.InitialBalance, 1)
	drawer := s.config.NewDrawer(seed)
	strategy := s.strategy(s.config.Unit)

	result := statistics.SessionResult{
		Seed:        seed,
		PeakBalance: state.Balance(),
		Categories:  make(map[string]statistics.CategoryTotals),
	}

	var last *table.Settlement
	for result.Rounds < s.config.Rounds {
		bets := strategy.Bets(state.Balance(), last)
		if len(bets) == 0 {
			break
		}
		for _, bet := range bets {
			if err := state.PlaceBet(bet); err != nil {
				return result, fmt.Errorf("round %d: %w", result.Rounds+1, err)
			}
		}
		if err := state.BeginSpin(); err != nil {
			return result, err
		}
		settlement, err := state.Settle(drawer.Draw())
		if err != nil {
			return result, err
		}
		if err := state.Reopen(1); err != nil {
			return result, err
		}

		result.Rounds++
		result.Staked += settlement.TotalStaked
		result.Returned += settlement.TotalWinnings
		for _, r := range settlement.Results {
			name := r.Bet.Category.String()
			totals := result.Categories[name]
			totals.Bets++
			totals.Staked += int64(r.Bet.Amount)
			totals.Returned += int64(r.Payout)
			result.Categories[name] = totals
		}
		result.PeakBalance = max(result.PeakBalance, state.Balance())
		last = &settlement
	}

	result.FinalBalance = state.Balance()
	result.Busted = result.Rounds < s.config.Rounds
	return result, nil
}
