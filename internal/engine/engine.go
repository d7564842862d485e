// Package engine runs a single-player roulette table: it owns the round
// state, drives the betting countdown, spin delay and cooldown on a clock,
// and publishes every change to subscribers.
//
// All mutations are serialised by one mutex. Timer callbacks carry the epoch
// they were scheduled in and do nothing once a later phase transition has
// bumped it, so a tick or draw that fires late can never touch a newer round.
package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/ruleta/internal/history"
	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// Drawer produces the winning number for a spin.
type Drawer interface {
	Draw() wheel.Number
}

const subscriberBuffer = 64

// Engine is the round state machine for one table
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	state  *table.RoundState
	clock  quartz.Clock
	drawer Drawer
	logger *log.Logger
	newID  func() string

	round        int
	roundID      string
	selectedChip int
	last         *table.Settlement

	timer   *quartz.Timer
	epoch   uint64
	started bool
	closed  bool

	subs    map[int]chan Event
	nextSub int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for all timers.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDrawer sets the source of winning numbers.
func WithDrawer(d Drawer) Option {
	return func(e *Engine) { e.drawer = d }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRoundIDs overrides round ID generation.
func WithRoundIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates an engine in the Betting phase. The countdown does not run
// until Start is called.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		state:        table.NewRoundState(cfg.InitialBalance, cfg.BettingSeconds),
		clock:        quartz.NewReal(),
		logger:       log.Default(),
		newID:        newRoundID,
		selectedChip: cfg.DefaultChip,
		subs:         make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.drawer == nil {
		w, seed := randutil.TimeSeeded()
		e.drawer = w
		e.logger.Debug("Using time-seeded wheel", "seed", seed)
	}
	e.logger = e.logger.WithPrefix("engine")
	e.fitChip()
	e.beginRound()
	return e, nil
}

func newRoundID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Start opens the first betting window and starts the countdown.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started || e.closed {
		return
	}
	e.started = true
	e.logger.Info("Table open", "balance", e.state.Balance(), "window", e.cfg.BettingSeconds)
	e.publish(Event{Type: EventRoundStart})
	if e.state.Phase() == table.Betting {
		e.scheduleTick()
	}
}

// Close cancels pending timers and closes all subscriber channels.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.cancelTimer()
	e.closed = true
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}

// Subscribe returns a channel receiving every event and a function that
// unsubscribes. Events are dropped for a subscriber whose buffer is full.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				close(sub)
				delete(e.subs, id)
			}
		})
	}
}

// PlaceBet validates bet and stakes it.
func (e *Engine) PlaceBet(bet table.Bet) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.PlaceBet(bet); err != nil {
		e.logger.Debug("Bet rejected", "position", bet.Position, "amount", bet.Amount, "error", err)
		return e.snapshot(), err
	}
	bets := e.state.Bets()
	placed := bets[len(bets)-1]
	e.logger.Debug("Bet placed", "position", placed.Position, "amount", placed.Amount, "staked", e.state.TotalStaked())
	e.fitChip()
	e.publish(Event{Type: EventBetPlaced, Bet: &placed})
	return e.snapshot(), nil
}

// PlaceChip stakes the selected chip on the cell formed by numbers.
func (e *Engine) PlaceChip(category table.Category, numbers []wheel.Number) (Snapshot, error) {
	e.mu.Lock()
	chip := e.selectedChip
	e.mu.Unlock()

	if chip <= 0 {
		return e.Snapshot(), fmt.Errorf("%w: no chip selected", table.ErrInvalidChip)
	}
	bet, err := table.NewBet(category, numbers, chip)
	if err != nil {
		return e.Snapshot(), err
	}
	return e.PlaceBet(bet)
}

// ClearBets refunds all active bets. It is only allowed while betting is
// open.
func (e *Engine) ClearBets() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	refund, err := e.state.ClearBets()
	if err != nil {
		return e.snapshot(), err
	}
	if refund > 0 {
		e.logger.Debug("Bets cleared", "refund", refund)
	}
	e.publish(Event{Type: EventBetsCleared, Refund: refund})
	return e.snapshot(), nil
}

// SelectChip chooses the denomination used by PlaceChip.
func (e *Engine) SelectChip(amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !slices.Contains(e.cfg.Chips, amount) {
		return fmt.Errorf("%w: %d is not a table denomination", table.ErrInvalidChip, amount)
	}
	if amount > e.state.Balance() {
		return fmt.Errorf("%w: chip %d exceeds balance of %d", table.ErrInsufficientBalance, amount, e.state.Balance())
	}
	e.selectedChip = amount
	e.publish(Event{Type: EventChipSelected})
	return nil
}

// Spin closes betting and schedules the draw. It needs at least one active
// bet.
func (e *Engine) Spin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spin()
}

func (e *Engine) spin() error {
	if e.closed {
		return fmt.Errorf("%w: table closed", table.ErrBettingClosed)
	}
	if err := e.state.BeginSpin(); err != nil {
		return err
	}
	e.cancelTimer()
	e.logger.Info("Spinning", "round", e.round, "bets", len(e.state.Bets()), "staked", e.state.TotalStaked())
	e.publish(Event{Type: EventSpinStart})
	e.schedule(e.cfg.SpinDelay, "draw", e.draw)
	return nil
}

// ResetRound refunds active bets and restarts the betting window. It is
// rejected while the wheel is spinning.
func (e *Engine) ResetRound() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	refund, err := e.state.ResetRound(e.cfg.BettingSeconds)
	if err != nil {
		return e.snapshot(), err
	}
	e.cancelTimer()
	e.beginRound()
	e.logger.Info("Round reset", "round", e.round, "refund", refund)
	e.publish(Event{Type: EventRoundStart, Refund: refund})
	e.scheduleTick()
	return e.snapshot(), nil
}

// ResetBalance restores the initial balance, discards active bets and clears
// the recent results. It is allowed in any phase and cancels a pending draw.
func (e *Engine) ResetBalance() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimer()
	e.state.ResetBalance(e.cfg.BettingSeconds)
	e.last = nil
	e.selectedChip = e.cfg.DefaultChip
	e.fitChip()
	e.beginRound()
	e.logger.Info("Balance reset", "balance", e.state.Balance())
	e.publish(Event{Type: EventBalanceReset})
	e.scheduleTick()
	return e.snapshot()
}

// Snapshot returns the current table state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Stats summarises the recent results.
func (e *Engine) Stats() history.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Summarize(e.state.Recent())
}

func (e *Engine) snapshot() Snapshot {
	snap := Snapshot{
		Snapshot:     e.state.Snapshot(),
		Round:        e.round,
		RoundID:      e.roundID,
		SelectedChip: e.selectedChip,
	}
	for _, chip := range e.cfg.Chips {
		if chip <= e.state.Balance() {
			snap.Chips = append(snap.Chips, chip)
		}
	}
	if e.last != nil {
		last := *e.last
		snap.LastSettlement = &last
	}
	return snap
}

func (e *Engine) beginRound() {
	e.round++
	e.roundID = e.newID()
}

// fitChip keeps the selected chip affordable by dropping to the largest
// denomination the balance covers, or 0 when none is.
func (e *Engine) fitChip() {
	if e.selectedChip <= e.state.Balance() {
		return
	}
	e.selectedChip = 0
	for _, chip := range e.cfg.Chips {
		if chip <= e.state.Balance() && chip > e.selectedChip {
			e.selectedChip = chip
		}
	}
}

func (e *Engine) tick() {
	remaining := e.state.Tick()
	e.publish(Event{Type: EventTick})

	if remaining > 0 {
		if remaining == e.cfg.LastCallSeconds {
			e.publish(Event{Type: EventLastCall})
		}
		e.scheduleTick()
		return
	}

	if err := e.state.Lock(); err != nil {
		e.logger.Error("Failed to close betting", "error", err)
		return
	}
	e.logger.Info("No more bets", "round", e.round, "bets", len(e.state.Bets()))
	e.publish(Event{Type: EventBettingClosed})

	if e.cfg.AutoSpin && len(e.state.Bets()) > 0 {
		if err := e.spin(); err != nil {
			e.logger.Error("Auto spin failed", "error", err)
		}
	}
}

func (e *Engine) draw() {
	n := e.drawer.Draw()
	settlement, err := e.state.Settle(n)
	if err != nil {
		e.logger.Error("Settlement failed", "number", n, "error", err)
		return
	}
	e.last = &settlement
	e.fitChip()

	e.logger.Info("Round settled",
		"round", e.round,
		"number", n,
		"color", settlement.Color,
		"staked", settlement.TotalStaked,
		"winnings", settlement.TotalWinnings,
		"balance", settlement.BalanceAfter)
	e.publish(Event{Type: EventSettled, Settlement: &settlement})
	e.schedule(e.cfg.Cooldown, "cooldown", e.reopen)
}

func (e *Engine) reopen() {
	if err := e.state.Reopen(e.cfg.BettingSeconds); err != nil {
		e.logger.Error("Failed to reopen betting", "error", err)
		return
	}
	e.beginRound()
	e.publish(Event{Type: EventRoundStart})
	e.scheduleTick()
}

func (e *Engine) scheduleTick() {
	e.schedule(time.Second, "tick", e.tick)
}

// schedule replaces any pending timer with fn after d. fn runs with e.mu held.
func (e *Engine) schedule(d time.Duration, tag string, fn func()) {
	e.cancelTimer()
	epoch := e.epoch
	e.timer = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || epoch != e.epoch {
			return
		}
		e.timer = nil
		fn()
	}, "engine", tag)
}

func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.epoch++
}

func (e *Engine) publish(ev Event) {
	ev.Snapshot = e.snapshot()
	ev.Time = e.clock.Now()
	for id, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.logger.Warn("Subscriber buffer full, dropping event", "subscriber", id, "type", ev.Type)
		}
	}
}
