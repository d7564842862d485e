package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/ruleta/internal/table"
)

// Config holds the table rules and timings for an engine
type Config struct {
	InitialBalance  int
	BettingSeconds  int
	LastCallSeconds int
	SpinDelay       time.Duration
	Cooldown        time.Duration
	Chips           []int
	DefaultChip     int
	AutoSpin        bool
}

// DefaultChips are the chip denominations offered at the table.
var DefaultChips = []int{25, 100, 500, 1000, 5000, 10000}

// DefaultConfig returns the standard table configuration
func DefaultConfig() Config {
	return Config{
		InitialBalance:  table.DefaultInitialBalance,
		BettingSeconds:  20,
		LastCallSeconds: 5,
		SpinDelay:       4 * time.Second,
		Cooldown:        4 * time.Second,
		Chips:           slices.Clone(DefaultChips),
		DefaultChip:     100,
	}
}

// Validate validates the engine configuration
func (c Config) Validate() error {
	if c.InitialBalance < 0 {
		return fmt.Errorf("initial balance cannot be negative: %d", c.InitialBalance)
	}
	if c.BettingSeconds <= 0 {
		return fmt.Errorf("betting window must be positive: %d", c.BettingSeconds)
	}
	if c.LastCallSeconds < 0 || c.LastCallSeconds >= c.BettingSeconds {
		return fmt.Errorf("last call must be within the betting window: %d", c.LastCallSeconds)
	}
	if c.SpinDelay < 0 || c.Cooldown < 0 {
		return fmt.Errorf("spin delay and cooldown cannot be negative")
	}
	if len(c.Chips) == 0 {
		return fmt.Errorf("at least one chip denomination is required")
	}
	for _, chip := range c.Chips {
		if chip <= 0 {
			return fmt.Errorf("chip denominations must be positive: %d", chip)
		}
	}
	if !slices.Contains(c.Chips, c.DefaultChip) {
		return fmt.Errorf("default chip %d is not a configured denomination", c.DefaultChip)
	}
	return nil
}
