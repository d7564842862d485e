package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/table"
)

// Connection is one player's WebSocket session with a private table
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	engine    *engine.Engine
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps conn and the engine that serves it
func NewConnection(id string, conn *websocket.Conn, eng *engine.Engine, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Message, 256),
		engine: eng,
		logger: logger.WithPrefix("conn").With("conn", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection. The client receives the initial
// state before the table opens.
func (c *Connection) Start() {
	events, _ := c.engine.Subscribe()

	go c.writePump()
	go c.readPump()
	go c.forwardEvents(events)

	c.sendState("")
	c.engine.Start()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close stops the table and closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.engine.Close()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.sendError("", "invalid_message", "Malformed JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// forwardEvents relays engine events until the engine closes the channel
func (c *Connection) forwardEvents(events <-chan engine.Event) {
	for ev := range events {
		msg, err := NewMessage(MessageTypeEvent, EventDataFromEngine(ev))
		if err != nil {
			c.logger.Error("Failed to encode event", "type", ev.Type, "error", err)
			continue
		}
		if err := c.SendMessage(msg); err != nil {
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			if errors.Is(err, table.ErrInvalidBet) {
				c.sendError(msg.RequestID, table.Code(err), err.Error())
				return
			}
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse place bet data")
			return
		}
		c.handlePlaceBet(msg.RequestID, data)

	case MessageTypeSpin:
		c.reply(msg.RequestID, c.engine.Spin())

	case MessageTypeClearBets:
		_, err := c.engine.ClearBets()
		c.reply(msg.RequestID, err)

	case MessageTypeResetRound:
		_, err := c.engine.ResetRound()
		c.reply(msg.RequestID, err)

	case MessageTypeResetBalance:
		c.engine.ResetBalance()
		c.reply(msg.RequestID, nil)

	case MessageTypeSelectChip:
		var data SelectChipData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse select chip data")
			return
		}
		c.reply(msg.RequestID, c.engine.SelectChip(data.Amount))

	case MessageTypeGetState:
		c.sendState(msg.RequestID)

	case MessageTypeGetStats:
		c.respond(msg.RequestID, MessageTypeStats, c.engine.Stats())

	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handlePlaceBet(requestID string, data PlaceBetData) {
	numbers := data.CoveredNumbers()

	if data.Amount == 0 {
		_, err := c.engine.PlaceChip(data.Category, numbers)
		c.reply(requestID, err)
		return
	}

	bet, err := table.NewBet(data.Category, numbers, data.Amount)
	if err != nil {
		c.reply(requestID, err)
		return
	}
	_, err = c.engine.PlaceBet(bet)
	c.reply(requestID, err)
}

// reply answers a command with the new state, or with an error carrying the
// stable code for err.
func (c *Connection) reply(requestID string, err error) {
	if err != nil {
		c.logger.Debug("Command rejected", "requestId", requestID, "error", err)
		c.sendError(requestID, table.Code(err), err.Error())
		return
	}
	c.sendState(requestID)
}

func (c *Connection) sendState(requestID string) {
	c.respond(requestID, MessageTypeState, c.engine.Snapshot())
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string) {
	c.respond(requestID, MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

func (c *Connection) respond(requestID string, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}
