package server

import (
	"encoding/json"
	"time"

	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// PlaceBetData stakes on a table cell. An Amount of zero uses the selected
// chip.
type PlaceBetData struct {
	Category table.Category `json:"category"`
	Numbers  []wheel.Number `json:"numbers,omitempty"`
	Amount   int            `json:"amount,omitempty"`
}

type SelectChipData struct {
	Amount int `json:"amount"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EventData carries one engine event and the table state after it.
type EventData struct {
	Event      engine.EventType  `json:"event"`
	Bet        *table.Bet        `json:"bet,omitempty"`
	Refund     int               `json:"refund,omitempty"`
	Settlement *table.Settlement `json:"settlement,omitempty"`
	State      engine.Snapshot   `json:"state"`
}

// EventDataFromEngine converts an engine event into its wire form
func EventDataFromEngine(ev engine.Event) EventData {
	return EventData{
		Event:      ev.Type,
		Bet:        ev.Bet,
		Refund:     ev.Refund,
		Settlement: ev.Settlement,
		State:      ev.Snapshot,
	}
}

// CoveredNumbers returns the numbers a place_bet message names. Even-money
// bets may omit them and get their canonical set.
func (d PlaceBetData) CoveredNumbers() []wheel.Number {
	if len(d.Numbers) == 0 {
		return table.Cover(d.Category, 0)
	}
	return d.Numbers
}
