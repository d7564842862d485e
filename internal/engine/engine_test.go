package engine

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

type testTable struct {
	engine *Engine
	clock  *quartz.Mock
}

func newTestTable(t *testing.T, cfg Config, draws ...wheel.Number) *testTable {
	t.Helper()
	if len(draws) == 0 {
		draws = []wheel.Number{0}
	}
	clock := quartz.NewMock(t)
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	ids := 0
	e, err := New(cfg,
		WithClock(clock),
		WithDrawer(randutil.NewSequence(draws...)),
		WithLogger(logger),
		WithRoundIDs(func() string {
			ids++
			return "round-" + strconv.Itoa(ids)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return &testTable{engine: e, clock: clock}
}

func (tt *testTable) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tt.clock.Advance(d).MustWait(ctx)
}

func (tt *testTable) advanceNext(t *testing.T) time.Duration {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, w := tt.clock.AdvanceNext()
	w.MustWait(ctx)
	return d
}

func straight(t *testing.T, n wheel.Number, amount int) table.Bet {
	t.Helper()
	bet, err := table.StraightBet(n, amount)
	require.NoError(t, err)
	return bet
}

func drain(ch <-chan Event) []EventType {
	var types []EventType
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return types
			}
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestStraightWinThroughFullCycle(t *testing.T) {
	tt := newTestTable(t, DefaultConfig(), 7)
	tt.engine.Start()

	_, err := tt.engine.PlaceBet(straight(t, 7, 100))
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())
	assert.Equal(t, table.Spinning, tt.engine.Snapshot().Phase)

	assert.Equal(t, 4*time.Second, tt.advanceNext(t))
	snap := tt.engine.Snapshot()
	assert.Equal(t, table.Settled, snap.Phase)
	assert.Equal(t, 13500, snap.Balance)
	require.NotNil(t, snap.WinningNumber)
	assert.Equal(t, wheel.Number(7), *snap.WinningNumber)
	require.NotNil(t, snap.LastSettlement)
	assert.Equal(t, 3600, snap.LastSettlement.TotalWinnings)
	assert.Empty(t, snap.Bets)

	assert.Equal(t, 4*time.Second, tt.advanceNext(t))
	snap = tt.engine.Snapshot()
	assert.Equal(t, table.Betting, snap.Phase)
	assert.Nil(t, snap.WinningNumber)
	assert.Equal(t, 20, snap.BettingSecondsRemaining)
	assert.Equal(t, 2, snap.Round)
	assert.Equal(t, []wheel.Number{7}, snap.RecentResults)
}

func TestRedLosesOnBlack(t *testing.T) {
	tt := newTestTable(t, DefaultConfig(), 17)

	bet, err := table.EvenMoneyBet(table.Red, 500)
	require.NoError(t, err)
	_, err = tt.engine.PlaceBet(bet)
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())
	tt.advanceNext(t)

	assert.Equal(t, 9500, tt.engine.Snapshot().Balance)
}

func TestCountdownLocksBetting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BettingSeconds = 3
	cfg.LastCallSeconds = 1
	tt := newTestTable(t, cfg)
	tt.engine.Start()

	tt.advance(t, time.Second)
	assert.Equal(t, 2, tt.engine.Snapshot().BettingSecondsRemaining)
	tt.advance(t, time.Second)
	tt.advance(t, time.Second)

	snap := tt.engine.Snapshot()
	assert.Equal(t, table.Locked, snap.Phase)
	assert.Zero(t, snap.BettingSecondsRemaining)

	_, err := tt.engine.PlaceBet(straight(t, 1, 10))
	assert.ErrorIs(t, err, table.ErrBettingClosed)
	assert.ErrorIs(t, tt.engine.Spin(), table.ErrNoActiveBets)

	_, ok := tt.clock.Peek()
	assert.False(t, ok, "no timer should remain once betting is locked")
}

func TestSpinFromLockedPhase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BettingSeconds = 2
	cfg.LastCallSeconds = 1
	tt := newTestTable(t, cfg, 3)
	tt.engine.Start()

	_, err := tt.engine.PlaceBet(straight(t, 3, 10))
	require.NoError(t, err)
	tt.advance(t, time.Second)
	tt.advance(t, time.Second)
	require.Equal(t, table.Locked, tt.engine.Snapshot().Phase)

	require.NoError(t, tt.engine.Spin())
	tt.advanceNext(t)
	assert.Equal(t, 10000-10+360, tt.engine.Snapshot().Balance)
}

func TestSpinWithoutBets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialBalance = 0
	tt := newTestTable(t, cfg)

	_, err := tt.engine.PlaceBet(straight(t, 1, 25))
	assert.ErrorIs(t, err, table.ErrInsufficientBalance)
	assert.ErrorIs(t, tt.engine.Spin(), table.ErrNoActiveBets)
	assert.Equal(t, table.Betting, tt.engine.Snapshot().Phase)
}

func TestSpinCancelsCountdown(t *testing.T) {
	tt := newTestTable(t, DefaultConfig(), 5)
	tt.engine.Start()
	tt.advance(t, time.Second)

	_, err := tt.engine.PlaceBet(straight(t, 5, 10))
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())

	// The next event must be the draw, not a pending tick.
	d, ok := tt.clock.Peek()
	require.True(t, ok)
	assert.Equal(t, 4*time.Second, d)
	assert.Equal(t, 19, tt.engine.Snapshot().BettingSecondsRemaining)
}

func TestResetBalanceCancelsPendingDraw(t *testing.T) {
	tt := newTestTable(t, DefaultConfig(), 5)
	tt.engine.Start()

	_, err := tt.engine.PlaceBet(straight(t, 5, 1000))
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())

	snap := tt.engine.ResetBalance()
	assert.Equal(t, table.Betting, snap.Phase)
	assert.Equal(t, 10000, snap.Balance)

	// Only the new countdown is pending; the draw never fires.
	assert.Equal(t, time.Second, tt.advanceNext(t))
	snap = tt.engine.Snapshot()
	assert.Equal(t, table.Betting, snap.Phase)
	assert.Equal(t, 10000, snap.Balance)
	assert.Empty(t, snap.RecentResults)
	assert.Equal(t, 19, snap.BettingSecondsRemaining)
}

func TestResetRound(t *testing.T) {
	tt := newTestTable(t, DefaultConfig())
	tt.engine.Start()
	tt.advance(t, time.Second)

	_, err := tt.engine.PlaceBet(straight(t, 5, 250))
	require.NoError(t, err)

	snap, err := tt.engine.ResetRound()
	require.NoError(t, err)
	assert.Equal(t, 10000, snap.Balance)
	assert.Equal(t, 20, snap.BettingSecondsRemaining)
	assert.Equal(t, 2, snap.Round)

	_, err = tt.engine.PlaceBet(straight(t, 5, 250))
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())
	_, err = tt.engine.ResetRound()
	assert.ErrorIs(t, err, table.ErrBettingClosed)
}

func TestClearBets(t *testing.T) {
	tt := newTestTable(t, DefaultConfig())
	for _, amount := range []int{100, 200} {
		bet, err := table.EvenMoneyBet(table.Even, amount)
		require.NoError(t, err)
		_, err = tt.engine.PlaceBet(bet)
		require.NoError(t, err)
	}
	require.Equal(t, 300, tt.engine.Snapshot().TotalStaked)

	snap, err := tt.engine.ClearBets()
	require.NoError(t, err)
	assert.Equal(t, 10000, snap.Balance)
	assert.Empty(t, snap.Bets)

	snap, err = tt.engine.ClearBets()
	require.NoError(t, err)
	assert.Equal(t, 10000, snap.Balance)
}

func TestLastCallAndEventOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BettingSeconds = 3
	cfg.LastCallSeconds = 2
	tt := newTestTable(t, cfg, 0)
	events, unsubscribe := tt.engine.Subscribe()
	defer unsubscribe()

	tt.engine.Start()
	tt.advance(t, time.Second)
	assert.Equal(t, []EventType{EventRoundStart, EventTick, EventLastCall}, drain(events))

	_, err := tt.engine.PlaceBet(straight(t, 0, 10))
	require.NoError(t, err)
	require.NoError(t, tt.engine.Spin())
	tt.advanceNext(t)
	tt.advanceNext(t)

	assert.Equal(t, []EventType{EventBetPlaced, EventSpinStart, EventSettled, EventRoundStart}, drain(events))
}

func TestAutoSpinOnExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BettingSeconds = 1
	cfg.LastCallSeconds = 0
	cfg.AutoSpin = true
	tt := newTestTable(t, cfg, 12)
	tt.engine.Start()

	_, err := tt.engine.PlaceBet(straight(t, 12, 10))
	require.NoError(t, err)
	tt.advance(t, time.Second)
	assert.Equal(t, table.Spinning, tt.engine.Snapshot().Phase)

	tt.advanceNext(t)
	assert.Equal(t, table.Settled, tt.engine.Snapshot().Phase)
}

func TestSelectChip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialBalance = 600
	tt := newTestTable(t, cfg, 1)

	assert.ErrorIs(t, tt.engine.SelectChip(42), table.ErrInvalidChip)
	assert.ErrorIs(t, tt.engine.SelectChip(1000), table.ErrInsufficientBalance)
	require.NoError(t, tt.engine.SelectChip(500))

	snap, err := tt.engine.PlaceChip(table.Straight, []wheel.Number{2})
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Balance)
	// 500 is no longer affordable, so the selection drops to 100
	assert.Equal(t, 100, snap.SelectedChip)
	assert.Equal(t, []int{25, 100}, snap.Chips)
}

func TestPlaceChipRejectsMalformedCell(t *testing.T) {
	tt := newTestTable(t, DefaultConfig())

	_, err := tt.engine.PlaceChip(table.Split, []wheel.Number{1, 5})
	assert.ErrorIs(t, err, table.ErrInvalidBet)
	assert.Equal(t, 10000, tt.engine.Snapshot().Balance)
}

func TestStatsTrackRecentResults(t *testing.T) {
	tt := newTestTable(t, DefaultConfig(), 9, 9, 4)
	for i := 0; i < 3; i++ {
		_, err := tt.engine.PlaceBet(straight(t, 9, 10))
		require.NoError(t, err)
		require.NoError(t, tt.engine.Spin())
		tt.advanceNext(t) // draw
		tt.advanceNext(t) // cooldown
	}

	stats := tt.engine.Stats()
	assert.Equal(t, 2, stats.Red)
	assert.Equal(t, 1, stats.Black)
	require.Len(t, stats.Hot, 1)
	assert.Equal(t, wheel.Number(9), stats.Hot[0].Number)
}

func TestCloseStopsTimersAndSubscribers(t *testing.T) {
	tt := newTestTable(t, DefaultConfig())
	events, _ := tt.engine.Subscribe()
	tt.engine.Start()
	tt.engine.Close()

	drain(events)
	_, open := <-events
	assert.False(t, open)
	assert.ErrorIs(t, tt.engine.Spin(), table.ErrBettingClosed)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := DefaultConfig()
	bad.BettingSeconds = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.DefaultChip = 7
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Chips = nil
	assert.Error(t, bad.Validate())

	_, err := New(bad)
	assert.Error(t, err)
}
