package engine

import (
	"time"

	"github.com/lox/ruleta/internal/table"
)

// EventType identifies what changed at the table
type EventType string

const (
	EventRoundStart    EventType = "round_start"
	EventTick          EventType = "tick"
	EventLastCall      EventType = "last_call"
	EventBettingClosed EventType = "betting_closed"
	EventBetPlaced     EventType = "bet_placed"
	EventBetsCleared   EventType = "bets_cleared"
	EventChipSelected  EventType = "chip_selected"
	EventSpinStart     EventType = "spin_start"
	EventSettled       EventType = "settled"
	EventBalanceReset  EventType = "balance_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published to subscribers after every state change. Snapshot is
// the table state right after the change.
type Event struct {
	Type       EventType         `json:"type"`
	Snapshot   Snapshot          `json:"snapshot"`
	Bet        *table.Bet        `json:"bet,omitempty"`
	Refund     int               `json:"refund,omitempty"`
	Settlement *table.Settlement `json:"settlement,omitempty"`
	Time       time.Time         `json:"time"`
}

// Snapshot is the full read-only view of the engine for rendering
type Snapshot struct {
	table.Snapshot
	Round          int               `json:"round"`
	RoundID        string            `json:"roundId"`
	SelectedChip   int               `json:"selectedChip"`
	Chips          []int             `json:"chips"`
	LastSettlement *table.Settlement `json:"lastSettlement,omitempty"`
}
