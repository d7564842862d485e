package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypePlaceBet     MessageType = "place_bet"
	MessageTypeSpin         MessageType = "spin"
	MessageTypeClearBets    MessageType = "clear_bets"
	MessageTypeResetRound   MessageType = "reset_round"
	MessageTypeResetBalance MessageType = "reset_balance"
	MessageTypeSelectChip   MessageType = "select_chip"
	MessageTypeGetState     MessageType = "get_state"
	MessageTypeGetStats     MessageType = "get_stats"

	// Server to client messages
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
	MessageTypeStats MessageType = "stats"
	MessageTypeError MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
