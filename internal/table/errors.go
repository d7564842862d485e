package table

import "errors"

// Rejections returned by the validator, ledger and round state machine. They
// are recoverable and never leave a RoundState partially modified.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBettingClosed       = errors.New("betting closed")
	ErrNoActiveBets        = errors.New("no active bets")
	ErrInvalidBet          = errors.New("invalid bet")
	ErrInvalidChip         = errors.New("invalid chip")
)

// Code maps a rejection onto a stable identifier suitable for clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrBettingClosed):
		return "betting_closed"
	case errors.Is(err, ErrNoActiveBets):
		return "no_active_bets"
	case errors.Is(err, ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, ErrInvalidChip):
		return "invalid_chip"
	default:
		return "internal_error"
	}
}
