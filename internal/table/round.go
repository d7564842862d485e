package table

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/lox/ruleta/internal/history"
	"github.com/lox/ruleta/internal/wheel"
)

// DefaultInitialBalance is the balance a new player starts with.
const DefaultInitialBalance = 10000

// RoundState is the complete state of a single-player roulette table. It is
// not safe for concurrent use; the engine serialises access to it.
type RoundState struct {
	initialBalance int
	phase          Phase
	balance        int
	bets           []Bet
	totalStaked    int
	secondsLeft    int
	winning        *wheel.Number
	recent         history.Results
}

// NewRoundState creates a table in the Betting phase with the given balance
// and betting window in seconds.
func NewRoundState(initialBalance, bettingSeconds int) *RoundState {
	return &RoundState{
		initialBalance: initialBalance,
		phase:          Betting,
		balance:        initialBalance,
		secondsLeft:    bettingSeconds,
	}
}

func (s *RoundState) Phase() Phase                 { return s.phase }
func (s *RoundState) Balance() int                 { return s.balance }
func (s *RoundState) TotalStaked() int             { return s.totalStaked }
func (s *RoundState) InitialBalance() int          { return s.initialBalance }
func (s *RoundState) BettingSecondsRemaining() int { return s.secondsLeft }
func (s *RoundState) Recent() history.Results      { return s.recent }

// Bets returns the active bets in placement order.
func (s *RoundState) Bets() []Bet {
	return cloneBets(s.bets)
}

// WinningNumber returns the drawn number while the round is Settled.
func (s *RoundState) WinningNumber() (wheel.Number, bool) {
	if s.winning == nil {
		return 0, false
	}
	return *s.winning, true
}

// PlaceBet validates bet and moves its stake from balance into escrow. On
// error the state is unchanged.
func (s *RoundState) PlaceBet(bet Bet) error {
	normalized, err := validate(bet, s)
	if err != nil {
		return err
	}
	s.bets = append(s.bets, normalized)
	s.balance -= normalized.Amount
	s.totalStaked += normalized.Amount
	return nil
}

// ClearBets refunds every active bet. It is only allowed while betting is
// open, and clearing an empty ledger refunds 0.
func (s *RoundState) ClearBets() (int, error) {
	if s.phase != Betting {
		return 0, fmt.Errorf("%w: cannot clear bets while %s", ErrBettingClosed, s.phase)
	}
	return s.refund(), nil
}

func (s *RoundState) refund() int {
	refund := s.totalStaked
	s.balance += refund
	s.bets = nil
	s.totalStaked = 0
	return refund
}

// Tick counts the betting window down by one second and reports the seconds
// left. It does nothing outside the Betting phase.
func (s *RoundState) Tick() int {
	if s.phase == Betting && s.secondsLeft > 0 {
		s.secondsLeft--
	}
	return s.secondsLeft
}

// Lock closes betting.
func (s *RoundState) Lock() error {
	if s.phase != Betting {
		return fmt.Errorf("%w: cannot lock while %s", ErrBettingClosed, s.phase)
	}
	s.phase = Locked
	s.secondsLeft = 0
	return nil
}

// BeginSpin moves a Betting or Locked round with at least one bet into
// Spinning.
func (s *RoundState) BeginSpin() error {
	if s.phase != Betting && s.phase != Locked {
		return fmt.Errorf("%w: cannot spin while %s", ErrBettingClosed, s.phase)
	}
	if len(s.bets) == 0 {
		return ErrNoActiveBets
	}
	s.phase = Spinning
	return nil
}

// Settle pays out the active bets against winning, records the result in the
// recent history and empties the ledger.
func (s *RoundState) Settle(winning wheel.Number) (Settlement, error) {
	if s.phase != Spinning {
		return Settlement{}, fmt.Errorf("%w: cannot settle while %s", ErrBettingClosed, s.phase)
	}
	if !winning.Valid() {
		return Settlement{}, fmt.Errorf("winning number %d out of range", winning)
	}

	total, results := Settle(s.bets, winning)
	settlement := Settlement{
		Winning:       winning,
		Color:         wheel.ColorOf(winning),
		TotalStaked:   s.totalStaked,
		TotalWinnings: total,
		BalanceBefore: s.balance,
		BalanceAfter:  s.balance + total,
		Results:       results,
	}

	s.balance += total
	s.bets = nil
	s.totalStaked = 0
	s.winning = &winning
	s.recent = s.recent.Push(winning)
	s.phase = Settled
	return settlement, nil
}

// Reopen starts a new betting window after a settled round.
func (s *RoundState) Reopen(bettingSeconds int) error {
	if s.phase != Settled {
		return fmt.Errorf("cannot reopen betting while %s", s.phase)
	}
	s.open(bettingSeconds)
	return nil
}

func (s *RoundState) open(bettingSeconds int) {
	s.phase = Betting
	s.secondsLeft = bettingSeconds
	s.winning = nil
}

// ResetRound refunds any active bets and reopens betting with a full window.
// A spin in progress cannot be reset.
func (s *RoundState) ResetRound(bettingSeconds int) (int, error) {
	if s.phase == Spinning {
		return 0, fmt.Errorf("%w: spin in progress", ErrBettingClosed)
	}
	refund := s.refund()
	s.open(bettingSeconds)
	return refund, nil
}

// ResetBalance restores the initial balance, discards active bets without
// refunding them and clears the recent history.
func (s *RoundState) ResetBalance(bettingSeconds int) {
	s.balance = s.initialBalance
	s.bets = nil
	s.totalStaked = 0
	s.recent = history.Results{}
	s.open(bettingSeconds)
}

// PositionTotals sums active stakes per layout position.
func (s *RoundState) PositionTotals() map[string]int {
	totals := make(map[string]int)
	for _, b := range s.bets {
		totals[b.Position] += b.Amount
	}
	return totals
}

// Snapshot is a read-only copy of a RoundState for rendering.
type Snapshot struct {
	Phase                   Phase           `json:"phase"`
	Balance                 int             `json:"balance"`
	Bets                    []Bet           `json:"bets"`
	TotalStaked             int             `json:"totalStaked"`
	PositionTotals          []PositionTotal `json:"positionTotals"`
	BettingSecondsRemaining int             `json:"bettingSecondsRemaining"`
	WinningNumber           *wheel.Number   `json:"winningNumber"`
	RecentResults           []wheel.Number  `json:"recentResults"`
}

// PositionTotal is the aggregated stake on one position.
type PositionTotal struct {
	Position string `json:"position"`
	Amount   int    `json:"amount"`
}

// Snapshot returns a deep copy of the state.
func (s *RoundState) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:                   s.phase,
		Balance:                 s.balance,
		Bets:                    cloneBets(s.bets),
		TotalStaked:             s.totalStaked,
		BettingSecondsRemaining: s.secondsLeft,
		RecentResults:           s.recent.Numbers(),
	}
	if s.winning != nil {
		n := *s.winning
		snap.WinningNumber = &n
	}

	totals := s.PositionTotals()
	positions := slices.Collect(maps.Keys(totals))
	sort.Strings(positions)
	for _, p := range positions {
		snap.PositionTotals = append(snap.PositionTotals, PositionTotal{Position: p, Amount: totals[p]})
	}
	return snap
}

func cloneBets(bets []Bet) []Bet {
	out := make([]Bet, len(bets))
	for i, b := range bets {
		b.Numbers = slices.Clone(b.Numbers)
		out[i] = b
	}
	return out
}
