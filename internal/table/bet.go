package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/ruleta/internal/wheel"
)

// Bet is a stake on one cell of the betting layout. Bets are values and are
// never modified after NewBet returns them.
type Bet struct {
	Category Category       `json:"category"`
	Numbers  []wheel.Number `json:"numbers"`
	Amount   int            `json:"amount"`
	Position string         `json:"position"`
}

// Covers reports whether n wins this bet.
func (b Bet) Covers(n wheel.Number) bool {
	return slices.Contains(b.Numbers, n)
}

func (b Bet) String() string {
	return fmt.Sprintf("%s $%d", b.Position, b.Amount)
}

// NewBet builds a bet of amount on the given numbers. The numbers may be in
// any order; they must form a legal cell for the category.
func NewBet(category Category, numbers []wheel.Number, amount int) (Bet, error) {
	if amount <= 0 {
		return Bet{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidBet, amount)
	}
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)

	position, err := positionOf(category, sorted)
	if err != nil {
		return Bet{}, err
	}
	return Bet{
		Category: category,
		Numbers:  sorted,
		Amount:   amount,
		Position: position,
	}, nil
}

// StraightBet is a single-number bet.
func StraightBet(n wheel.Number, amount int) (Bet, error) {
	return NewBet(Straight, []wheel.Number{n}, amount)
}

// DozenBet bets on dozen which (1-3).
func DozenBet(which, amount int) (Bet, error) {
	if which < 1 || which > 3 {
		return Bet{}, fmt.Errorf("%w: dozen %d", ErrInvalidBet, which)
	}
	return NewBet(Dozen, wheel.Dozen(which), amount)
}

// ColumnBet bets on column which (1-3).
func ColumnBet(which, amount int) (Bet, error) {
	if which < 1 || which > 3 {
		return Bet{}, fmt.Errorf("%w: column %d", ErrInvalidBet, which)
	}
	return NewBet(Column, wheel.Column(which), amount)
}

// EvenMoneyBet bets on one of red, black, odd, even, low or high.
func EvenMoneyBet(category Category, amount int) (Bet, error) {
	numbers := evenMoneyNumbers(category)
	if numbers == nil {
		return Bet{}, fmt.Errorf("%w: %s is not an even-money bet", ErrInvalidBet, category)
	}
	return NewBet(category, numbers, amount)
}

// Cover returns the canonical numbers for outside categories. For dozen and
// column the index selects which group. Inside categories return nil.
func Cover(category Category, index int) []wheel.Number {
	switch category {
	case Dozen:
		return wheel.Dozen(index)
	case Column:
		return wheel.Column(index)
	default:
		return evenMoneyNumbers(category)
	}
}

func evenMoneyNumbers(category Category) []wheel.Number {
	switch category {
	case Red:
		return wheel.Reds()
	case Black:
		return wheel.Blacks()
	case Odd:
		return wheel.Odds()
	case Even:
		return wheel.Evens()
	case Low:
		return wheel.Lows()
	case High:
		return wheel.Highs()
	default:
		return nil
	}
}

// positionOf checks that sorted forms a legal cell for category and returns
// the cell's position key.
func positionOf(category Category, sorted []wheel.Number) (string, error) {
	if len(sorted) == 0 {
		return "", fmt.Errorf("%w: no numbers covered", ErrInvalidBet)
	}
	for i, n := range sorted {
		if !n.Valid() {
			return "", fmt.Errorf("%w: number %d out of range", ErrInvalidBet, n)
		}
		if i > 0 && sorted[i-1] == n {
			return "", fmt.Errorf("%w: number %d repeated", ErrInvalidBet, n)
		}
	}

	var ok bool
	switch category {
	case Straight:
		ok = len(sorted) == 1
	case Split:
		ok = isSplit(sorted)
	case Street:
		ok = isStreet(sorted)
	case Corner:
		ok = isCorner(sorted)
	case Line:
		ok = isLine(sorted)
	case Column, Dozen:
		for which := 1; which <= 3; which++ {
			if slices.Equal(sorted, Cover(category, which)) {
				return fmt.Sprintf("%s-%d", category, which), nil
			}
		}
	case Red, Black, Odd, Even, Low, High:
		if slices.Equal(sorted, evenMoneyNumbers(category)) {
			return category.String(), nil
		}
	default:
		return "", fmt.Errorf("%w: unknown category %s", ErrInvalidBet, category)
	}
	if !ok {
		return "", fmt.Errorf("%w: numbers %v do not form a %s", ErrInvalidBet, sorted, category)
	}
	return insideKey(category, sorted), nil
}

func insideKey(category Category, sorted []wheel.Number) string {
	parts := make([]string, 0, len(sorted)+1)
	parts = append(parts, category.String())
	for _, n := range sorted {
		parts = append(parts, strconv.Itoa(int(n)))
	}
	return strings.Join(parts, "-")
}

func isSplit(s []wheel.Number) bool {
	if len(s) != 2 {
		return false
	}
	a, b := s[0], s[1]
	if a == wheel.Zero {
		return b >= 1 && b <= 3
	}
	if b == a+1 {
		return wheel.Row(a) == wheel.Row(b)
	}
	return b == a+3
}

func isStreet(s []wheel.Number) bool {
	if len(s) != 3 {
		return false
	}
	if s[0] == wheel.Zero {
		return (s[1] == 1 && s[2] == 2) || (s[1] == 2 && s[2] == 3)
	}
	return wheel.Col(s[0]) == 0 && s[1] == s[0]+1 && s[2] == s[0]+2
}

func isCorner(s []wheel.Number) bool {
	if len(s) != 4 {
		return false
	}
	if s[0] == wheel.Zero {
		return slices.Equal(s, []wheel.Number{0, 1, 2, 3})
	}
	a := s[0]
	return wheel.Col(a) < 2 && slices.Equal(s, []wheel.Number{a, a + 1, a + 3, a + 4})
}

func isLine(s []wheel.Number) bool {
	if len(s) != 6 || s[0] == wheel.Zero || wheel.Col(s[0]) != 0 {
		return false
	}
	for i, n := range s {
		if n != s[0]+wheel.Number(i) {
			return false
		}
	}
	return true
}
