package table

import (
	"fmt"
	"slices"
)

// Validate checks whether bet may be placed against s. It has no side effects.
func Validate(bet Bet, s *RoundState) error {
	_, err := validate(bet, s)
	return err
}

// validate returns bet normalised to sorted numbers and its derived position.
func validate(bet Bet, s *RoundState) (Bet, error) {
	if s.phase != Betting {
		return Bet{}, fmt.Errorf("%w: round is %s", ErrBettingClosed, s.phase)
	}
	if s.balance < 0 {
		return Bet{}, fmt.Errorf("%w: balance is negative (%d)", ErrInsufficientBalance, s.balance)
	}
	if bet.Amount <= 0 {
		return Bet{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidBet, bet.Amount)
	}
	if bet.Amount > s.balance {
		return Bet{}, fmt.Errorf("%w: bet of %d exceeds balance of %d", ErrInsufficientBalance, bet.Amount, s.balance)
	}

	// Bets built as literals bypass NewBet, so the cell is re-derived here.
	numbers := slices.Clone(bet.Numbers)
	slices.Sort(numbers)
	position, err := positionOf(bet.Category, numbers)
	if err != nil {
		return Bet{}, err
	}
	if bet.Position != "" && bet.Position != position {
		return Bet{}, fmt.Errorf("%w: position %q does not match %s", ErrInvalidBet, bet.Position, position)
	}

	return Bet{
		Category: bet.Category,
		Numbers:  numbers,
		Amount:   bet.Amount,
		Position: position,
	}, nil
}
