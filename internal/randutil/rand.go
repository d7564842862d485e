// Package randutil provides the random sources used to draw winning numbers.
package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/lox/ruleta/internal/wheel"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The two 64-bit PCG seeds are derived here so that every call site gets the
// same reproducible sequence for the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Wheel draws uniformly distributed pockets from a *rand.Rand. It is safe for
// concurrent use.
type Wheel struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewWheel wraps rng.
func NewWheel(rng *rand.Rand) *Wheel {
	return &Wheel{rng: rng}
}

// Seeded returns a reproducible wheel.
func Seeded(seed int64) *Wheel {
	return NewWheel(New(seed))
}

// TimeSeeded returns a wheel seeded from the wall clock along with the seed
// used, so a session can be replayed.
func TimeSeeded() (*Wheel, int64) {
	seed := time.Now().UnixNano()
	return Seeded(seed), seed
}

// Draw returns a pocket in [0, 36].
func (w *Wheel) Draw() wheel.Number {
	w.mu.Lock()
	defer w.mu.Unlock()
	return wheel.Number(w.rng.IntN(wheel.Pockets))
}

// Sequence replays fixed results in order, wrapping around at the end. It
// forces outcomes in tests and demos.
type Sequence struct {
	mu      sync.Mutex
	numbers []wheel.Number
	next    int
}

// NewSequence returns a Sequence over numbers, which must not be empty.
func NewSequence(numbers ...wheel.Number) *Sequence {
	if len(numbers) == 0 {
		panic("randutil: empty sequence")
	}
	return &Sequence{numbers: numbers}
}

// Draw returns the next number of the sequence.
func (s *Sequence) Draw() wheel.Number {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.numbers[s.next%len(s.numbers)]
	s.next++
	return n
}
