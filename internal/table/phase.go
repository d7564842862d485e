package table

import "fmt"

// Phase is the stage of a betting round
type Phase int

const (
	Betting Phase = iota
	Locked
	Spinning
	Settled
)

func (p Phase) String() string {
	switch p {
	case Betting:
		return "betting"
	case Locked:
		return "locked"
	case Spinning:
		return "spinning"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{Betting, Locked, Spinning, Settled} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
