package history

import (
	"sort"

	"github.com/lox/ruleta/internal/wheel"
)

// MaxHotNumbers bounds the hot-number list.
const MaxHotNumbers = 5

// HotNumber is a number that came up more than once in the window.
type HotNumber struct {
	Number wheel.Number `json:"number"`
	Count  int          `json:"count"`
}

// Stats are read-only aggregates over a Results window
type Stats struct {
	Red   int `json:"red"`
	Black int `json:"black"`
	Green int `json:"green"`

	Odd  int `json:"odd"`
	Even int `json:"even"`

	Low  int `json:"low"`
	High int `json:"high"`

	// StreakColor and StreakLength describe the run of identical colours
	// starting from the most recent result.
	StreakColor  wheel.Color `json:"streakColor"`
	StreakLength int         `json:"streakLength"`

	Hot []HotNumber `json:"hot"`
}

// Summarize computes Stats for r.
func Summarize(r Results) Stats {
	var s Stats
	counts := make(map[wheel.Number]int)

	for _, n := range r.numbers {
		switch wheel.ColorOf(n) {
		case wheel.Red:
			s.Red++
		case wheel.Black:
			s.Black++
		default:
			s.Green++
		}
		if wheel.IsOdd(n) {
			s.Odd++
		} else if wheel.IsEven(n) {
			s.Even++
		}
		if wheel.IsLow(n) {
			s.Low++
		} else if wheel.IsHigh(n) {
			s.High++
		}
		counts[n]++
	}

	s.StreakColor, s.StreakLength = streak(r.numbers)
	s.Hot = hotNumbers(counts)
	return s
}

func streak(numbers []wheel.Number) (wheel.Color, int) {
	if len(numbers) == 0 {
		return wheel.Green, 0
	}
	color := wheel.ColorOf(numbers[0])
	length := 1
	for _, n := range numbers[1:] {
		if wheel.ColorOf(n) != color {
			break
		}
		length++
	}
	return color, length
}

// hotNumbers ranks repeated numbers by count, breaking ties with the smaller
// number first.
func hotNumbers(counts map[wheel.Number]int) []HotNumber {
	hot := make([]HotNumber, 0, len(counts))
	for n, c := range counts {
		if c >= 2 {
			hot = append(hot, HotNumber{Number: n, Count: c})
		}
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Count != hot[j].Count {
			return hot[i].Count > hot[j].Count
		}
		return hot[i].Number < hot[j].Number
	})
	if len(hot) > MaxHotNumbers {
		hot = hot[:MaxHotNumbers]
	}
	return hot
}
