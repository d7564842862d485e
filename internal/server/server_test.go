package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/history"
	"github.com/lox/ruleta/internal/randutil"
	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func startTestServer(t *testing.T, draws ...wheel.Number) (*Server, *httptest.Server, *quartz.Mock) {
	t.Helper()
	if len(draws) == 0 {
		draws = []wheel.Number{0}
	}
	clock := quartz.NewMock(t)
	srv := NewServer("", engine.DefaultConfig(), testLogger(),
		WithEngineOptions(
			engine.WithClock(clock),
			engine.WithDrawer(randutil.NewSequence(draws...)),
		))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Stop(context.Background())
		ts.Close()
	})
	return srv, ts, clock
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(messageType MessageType, requestID string, data any) {
	c.t.Helper()
	msg := &Message{Type: messageType, RequestID: requestID, Timestamp: time.Now()}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(c.t, err)
		msg.Data = raw
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) next() Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

// until skips messages until match accepts one
func (c *testClient) until(match func(Message) bool) Message {
	c.t.Helper()
	for {
		if msg := c.next(); match(msg) {
			return msg
		}
	}
}

func (c *testClient) response(requestID string) Message {
	c.t.Helper()
	return c.until(func(m Message) bool { return m.RequestID == requestID })
}

func (c *testClient) event(eventType engine.EventType) EventData {
	c.t.Helper()
	var data EventData
	c.until(func(m Message) bool {
		if m.Type != MessageTypeEvent {
			return false
		}
		require.NoError(c.t, json.Unmarshal(m.Data, &data))
		return data.Event == eventType
	})
	return data
}

func decodeState(t *testing.T, msg Message) engine.Snapshot {
	t.Helper()
	require.Equal(t, MessageTypeState, msg.Type, "unexpected %s: %s", msg.Type, msg.Data)
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	return snap
}

func decodeError(t *testing.T, msg Message) ErrorData {
	t.Helper()
	require.Equal(t, MessageTypeError, msg.Type, "unexpected %s: %s", msg.Type, msg.Data)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestServerHealth(t *testing.T) {
	srv := NewServer("", engine.DefaultConfig(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.JSONEq(t, `{"status":"ok","tables":0}`, w.Body.String())
}

func TestWaitForHealthy(t *testing.T) {
	_, ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := WaitForHealthy(ctx, ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.Tables)
}

func TestInitialStateThenRoundStart(t *testing.T) {
	_, ts, _ := startTestServer(t)
	client := dial(t, ts)

	snap := decodeState(t, client.next())
	assert.Equal(t, table.Betting, snap.Phase)
	assert.Equal(t, 10000, snap.Balance)
	assert.Equal(t, 20, snap.BettingSecondsRemaining)
	assert.Equal(t, 100, snap.SelectedChip)
	assert.NotEmpty(t, snap.RoundID)

	ev := client.event(engine.EventRoundStart)
	assert.Equal(t, 1, ev.State.Round)
}

func TestPlaceBetAndSpinRoundTrip(t *testing.T) {
	_, ts, clock := startTestServer(t, 7)
	client := dial(t, ts)
	decodeState(t, client.next())

	client.send(MessageTypePlaceBet, "bet-1", PlaceBetData{
		Category: table.Straight,
		Numbers:  []wheel.Number{7},
		Amount:   100,
	})
	snap := decodeState(t, client.response("bet-1"))
	assert.Equal(t, 9900, snap.Balance)
	require.Len(t, snap.Bets, 1)
	assert.Equal(t, "straight-7", snap.Bets[0].Position)

	client.send(MessageTypeSpin, "spin-1", nil)
	snap = decodeState(t, client.response("spin-1"))
	assert.Equal(t, table.Spinning, snap.Phase)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, w := clock.AdvanceNext()
	w.MustWait(ctx)

	ev := client.event(engine.EventSettled)
	require.NotNil(t, ev.Settlement)
	assert.Equal(t, wheel.Number(7), ev.Settlement.Winning)
	assert.Equal(t, wheel.Red, ev.Settlement.Color)
	assert.Equal(t, 3600, ev.Settlement.TotalWinnings)
	assert.Equal(t, 13500, ev.State.Balance)
	assert.Equal(t, table.Settled, ev.State.Phase)
}

func TestPlaceBetWithSelectedChip(t *testing.T) {
	_, ts, _ := startTestServer(t)
	client := dial(t, ts)
	decodeState(t, client.next())

	client.send(MessageTypeSelectChip, "chip", SelectChipData{Amount: 500})
	snap := decodeState(t, client.response("chip"))
	assert.Equal(t, 500, snap.SelectedChip)

	client.send(MessageTypePlaceBet, "red", PlaceBetData{Category: table.Red})
	snap = decodeState(t, client.response("red"))
	assert.Equal(t, 9500, snap.Balance)
	require.Len(t, snap.Bets, 1)
	assert.Equal(t, "red", snap.Bets[0].Position)

	client.send(MessageTypeClearBets, "clear", nil)
	snap = decodeState(t, client.response("clear"))
	assert.Equal(t, 10000, snap.Balance)
	assert.Empty(t, snap.Bets)
}

func TestCommandErrors(t *testing.T) {
	_, ts, _ := startTestServer(t)
	client := dial(t, ts)
	decodeState(t, client.next())

	tests := []struct {
		name        string
		messageType MessageType
		data        any
		code        string
	}{
		{"spin without bets", MessageTypeSpin, nil, "no_active_bets"},
		{"split of distant numbers", MessageTypePlaceBet, PlaceBetData{Category: table.Split, Numbers: []wheel.Number{1, 5}, Amount: 100}, "invalid_bet"},
		{"unknown category", MessageTypePlaceBet, map[string]any{"category": "neighbours", "amount": 100}, "invalid_bet"},
		{"overspend", MessageTypePlaceBet, PlaceBetData{Category: table.Black, Amount: 20000}, "insufficient_balance"},
		{"odd chip", MessageTypeSelectChip, SelectChipData{Amount: 42}, "invalid_chip"},
		{"unknown type", MessageType("dance"), nil, "unknown_message_type"},
		{"malformed data", MessageTypeSelectChip, "five", "invalid_message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client.send(tt.messageType, tt.name, tt.data)
			data := decodeError(t, client.response(tt.name))
			assert.Equal(t, tt.code, data.Code)
		})
	}

	client.send(MessageTypeGetState, "state", nil)
	snap := decodeState(t, client.response("state"))
	assert.Equal(t, 10000, snap.Balance)
}

func TestGetStats(t *testing.T) {
	_, ts, clock := startTestServer(t, 32)
	client := dial(t, ts)
	decodeState(t, client.next())

	client.send(MessageTypePlaceBet, "bet", PlaceBetData{Category: table.Red, Amount: 100})
	decodeState(t, client.response("bet"))
	client.send(MessageTypeSpin, "spin", nil)
	decodeState(t, client.response("spin"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, w := clock.AdvanceNext()
	w.MustWait(ctx)
	client.event(engine.EventSettled)

	client.send(MessageTypeGetStats, "stats", nil)
	msg := client.response("stats")
	require.Equal(t, MessageTypeStats, msg.Type)
	var stats history.Stats
	require.NoError(t, json.Unmarshal(msg.Data, &stats))
	assert.Equal(t, 1, stats.Red)
	assert.Equal(t, 1, stats.Even)
	assert.Equal(t, 1, stats.StreakLength)
}

func TestConnectionsGetPrivateTables(t *testing.T) {
	srv, ts, _ := startTestServer(t)
	alice := dial(t, ts)
	bob := dial(t, ts)
	decodeState(t, alice.next())
	decodeState(t, bob.next())

	alice.send(MessageTypePlaceBet, "a", PlaceBetData{Category: table.Odd, Amount: 1000})
	assert.Equal(t, 9000, decodeState(t, alice.response("a")).Balance)

	bob.send(MessageTypeGetState, "b", nil)
	assert.Equal(t, 10000, decodeState(t, bob.response("b")).Balance)
	assert.Equal(t, 2, srv.ConnectionCount())

	require.NoError(t, alice.conn.Close())
	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}
