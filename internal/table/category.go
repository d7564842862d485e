package table

import "fmt"

// Category is the kind of wager a bet represents
type Category int

const (
	Straight Category = iota
	Split
	Street
	Corner
	Line
	Column
	Dozen
	Red
	Black
	Odd
	Even
	Low
	High
)

var categoryNames = [...]string{
	"straight", "split", "street", "corner", "line", "column", "dozen",
	"red", "black", "odd", "even", "low", "high",
}

func (c Category) String() string {
	if c < Straight || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// IsOutside reports whether c is a bet on a number group rather than on
// specific positions of the layout.
func (c Category) IsOutside() bool {
	return c >= Column && c <= High
}

// ParseCategory converts a category name as used on the wire into a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidBet, s)
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
