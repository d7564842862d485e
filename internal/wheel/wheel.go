// Package wheel models the 37 pockets of a European roulette wheel and the
// number groups that outside bets cover.
package wheel

import "fmt"

// Number is a pocket on the wheel, 0 through 36.
type Number int

const (
	Zero Number = 0
	Max  Number = 36

	// Pockets is the number of pockets on a single-zero wheel.
	Pockets = 37
)

// Valid reports whether n is a pocket on the wheel.
func (n Number) Valid() bool {
	return n >= Zero && n <= Max
}

// Color returns the pocket colour of n.
func (n Number) Color() Color {
	return ColorOf(n)
}

func (n Number) String() string {
	return fmt.Sprintf("%d", int(n))
}

// Color represents a pocket colour
type Color int

const (
	Green Color = iota
	Red
	Black
)

// String returns the string representation of a colour
func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	for _, candidate := range []Color{Green, Red, Black} {
		if candidate.String() == string(text) {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown colour %q", text)
}

var redPockets = [Pockets]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf returns the colour of pocket n. Anything that is not a valid pocket
// is reported as Green so callers never index out of range.
func ColorOf(n Number) Color {
	if n == Zero || !n.Valid() {
		return Green
	}
	if redPockets[n] {
		return Red
	}
	return Black
}

// IsRed reports whether n is a red pocket.
func IsRed(n Number) bool { return ColorOf(n) == Red }

// IsBlack reports whether n is a black pocket.
func IsBlack(n Number) bool { return ColorOf(n) == Black }

// IsOdd reports whether n is odd. Zero is neither odd nor even.
func IsOdd(n Number) bool { return n > Zero && n <= Max && n%2 == 1 }

// IsEven reports whether n is even. Zero is neither odd nor even.
func IsEven(n Number) bool { return n > Zero && n <= Max && n%2 == 0 }

// IsLow reports whether n is in 1-18.
func IsLow(n Number) bool { return n >= 1 && n <= 18 }

// IsHigh reports whether n is in 19-36.
func IsHigh(n Number) bool { return n >= 19 && n <= Max }

// InDozen reports whether n falls in dozen which (1, 2 or 3).
func InDozen(n Number, which int) bool {
	if n == Zero || !n.Valid() || which < 1 || which > 3 {
		return false
	}
	return (int(n)-1)/12+1 == which
}

// InColumn reports whether n falls in column which (1, 2 or 3). Column 1
// holds 1, 4, 7, ... 34.
func InColumn(n Number, which int) bool {
	if n == Zero || !n.Valid() || which < 1 || which > 3 {
		return false
	}
	return (int(n)-1)%3+1 == which
}

// Row returns the zero-based row of n on the betting layout (1-2-3 is row 0,
// 34-35-36 is row 11). Zero has no row and returns -1.
func Row(n Number) int {
	if n == Zero || !n.Valid() {
		return -1
	}
	return (int(n) - 1) / 3
}

// Col returns the zero-based column of n on the betting layout, or -1 for
// zero.
func Col(n Number) int {
	if n == Zero || !n.Valid() {
		return -1
	}
	return (int(n) - 1) % 3
}
