package simulator

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// Strategy decides the bets for each round of a session. A new instance is
// created per session, so implementations may keep state between rounds.
type Strategy interface {
	// Bets returns the wagers for the next round. last is nil before the
	// first spin. Returning no bets ends the session.
	Bets(balance int, last *table.Settlement) []table.Bet
}

// StrategyFactory creates a fresh strategy for a session
type StrategyFactory func(unit int) Strategy

var strategies = map[string]StrategyFactory{
	"red":        flatOn(table.Red, wheel.Reds()),
	"straight":   flatOn(table.Straight, []wheel.Number{17}),
	"dozen":      flatOn(table.Dozen, wheel.Dozen(2)),
	"corner":     flatOn(table.Corner, []wheel.Number{17, 18, 20, 21}),
	"martingale": func(unit int) Strategy { return &martingale{unit: unit, stake: unit} },
	"spread":     func(unit int) Strategy { return spread{unit: unit} },
}

func flatOn(category table.Category, numbers []wheel.Number) StrategyFactory {
	return func(unit int) Strategy {
		return flat{category: category, numbers: numbers, unit: unit}
	}
}

// Strategies returns the names of the built-in strategies
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupStrategy returns the factory for a named strategy
func LookupStrategy(name string) (StrategyFactory, error) {
	factory, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Strategies())
	}
	return factory, nil
}

// flat stakes the same unit on the same cell every round
type flat struct {
	category table.Category
	numbers  []wheel.Number
	unit     int
}

func (f flat) Bets(balance int, _ *table.Settlement) []table.Bet {
	if balance < f.unit {
		return nil
	}
	bet, err := table.NewBet(f.category, f.numbers, f.unit)
	if err != nil {
		return nil
	}
	return []table.Bet{bet}
}

// martingale doubles its red stake after every loss and drops back to the
// unit after a win. The stake is capped by the balance.
type martingale struct {
	unit  int
	stake int
}

func (m *martingale) Bets(balance int, last *table.Settlement) []table.Bet {
	if last != nil {
		if last.TotalWinnings > 0 {
			m.stake = m.unit
		} else {
			m.stake *= 2
		}
	}
	stake := min(m.stake, balance)
	if stake <= 0 {
		return nil
	}
	bet, err := table.EvenMoneyBet(table.Red, stake)
	if err != nil {
		return nil
	}
	return []table.Bet{bet}
}

// spread covers a mix of inside and outside cells each round: a straight,
// a split, a street, a line and a column.
type spread struct {
	unit int
}

var spreadCells = []struct {
	category table.Category
	numbers  []wheel.Number
}{
	{table.Straight, []wheel.Number{0}},
	{table.Split, []wheel.Number{8, 11}},
	{table.Street, []wheel.Number{25, 26, 27}},
	{table.Line, []wheel.Number{31, 32, 33, 34, 35, 36}},
	{table.Column, wheel.Column(1)},
}

func (s spread) Bets(balance int, _ *table.Settlement) []table.Bet {
	if balance < s.unit*len(spreadCells) {
		return nil
	}
	bets := make([]table.Bet, 0, len(spreadCells))
	for _, cell := range spreadCells {
		bet, err := table.NewBet(cell.category, slices.Clone(cell.numbers), s.unit)
		if err != nil {
			return nil
		}
		bets = append(bets, bet)
	}
	return bets
}
