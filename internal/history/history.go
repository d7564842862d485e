// Package history keeps the bounded log of recent winning numbers and derives
// the statistics shown next to the table.
package history

import (
	"github.com/lox/ruleta/internal/wheel"
)

// Capacity is the number of results kept.
const Capacity = 10

// Results holds recent winning numbers, most recent first. The zero value is
// an empty history.
type Results struct {
	numbers []wheel.Number
}

// NewResults builds a history from numbers given most recent first,
// truncated to Capacity.
func NewResults(numbers ...wheel.Number) Results {
	var r Results
	for i := len(numbers) - 1; i >= 0; i-- {
		r = r.Push(numbers[i])
	}
	return r
}

// Push returns a new history with n prepended, evicting the oldest entry
// once Capacity is exceeded. The receiver is not modified.
func (r Results) Push(n wheel.Number) Results {
	size := len(r.numbers) + 1
	if size > Capacity {
		size = Capacity
	}
	out := make([]wheel.Number, size)
	out[0] = n
	copy(out[1:], r.numbers)
	return Results{numbers: out}
}

// Len returns the number of results held.
func (r Results) Len() int { return len(r.numbers) }

// Last returns the most recent result.
func (r Results) Last() (wheel.Number, bool) {
	if len(r.numbers) == 0 {
		return 0, false
	}
	return r.numbers[0], true
}

// Numbers returns a copy of the results, most recent first.
func (r Results) Numbers() []wheel.Number {
	out := make([]wheel.Number, len(r.numbers))
	copy(out, r.numbers)
	return out
}
