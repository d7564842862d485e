package statistics

import (
	"fmt"
	"math"
	"sort"
)

// SessionResult represents the outcome of one simulated session
type SessionResult struct {
	Seed         int64 // RNG seed for this session (for replay)
	Rounds       int   // Rounds actually spun
	Staked       int   // Total amount wagered
	Returned     int   // Total paid back, stakes included
	FinalBalance int
	PeakBalance  int
	Busted       bool // Ran out of money before the last round

	Categories map[string]CategoryTotals // Wagered and returned per bet category
}

// Net returns the session's profit or loss
func (r SessionResult) Net() int {
	return r.Returned - r.Staked
}

// CategoryTotals tracks money in and out for one bet category
type CategoryTotals struct {
	Bets     int   `json:"bets"`
	Staked   int64 `json:"staked"`
	Returned int64 `json:"returned"`
}

// RTP returns the fraction of stakes paid back
func (c CategoryTotals) RTP() float64 {
	if c.Staked == 0 {
		return 0
	}
	return float64(c.Returned) / float64(c.Staked)
}

// Statistics aggregates session results
type Statistics struct {
	Sessions int
	SumNet   float64
	SumNet2  float64   // Sum of squares for variance calculation
	Values   []float64 // Every session's net, for median/percentile calculation

	Rounds        int
	TotalStaked   int64
	TotalReturned int64
	Winning       int // Sessions that ended ahead
	Busted        int // Sessions that ran out of money

	Categories map[string]CategoryTotals
}

// Mean returns the mean net result per session
func (s *Statistics) Mean() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.SumNet / float64(s.Sessions)
}

// Variance returns the sample variance of session results
func (s *Statistics) Variance() float64 {
	if s.Sessions < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Sessions)*mean*mean) / float64(s.Sessions-1)
}

// StdDev returns the sample standard deviation of session results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Sessions))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// RTP returns the return to player across every bet placed
func (s *Statistics) RTP() float64 {
	if s.TotalStaked == 0 {
		return 0
	}
	return float64(s.TotalReturned) / float64(s.TotalStaked)
}

// HouseEdge returns the fraction of stakes kept by the table
func (s *Statistics) HouseEdge() float64 {
	if s.TotalStaked == 0 {
		return 0
	}
	return 1 - s.RTP()
}

// Add incorporates a session result into the statistics
func (s *Statistics) Add(result SessionResult) {
	net := float64(result.Net())
	s.Sessions++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.Rounds += result.Rounds
	s.TotalStaked += int64(result.Staked)
	s.TotalReturned += int64(result.Returned)
	if result.Net() > 0 {
		s.Winning++
	}
	if result.Busted {
		s.Busted++
	}

	if s.Categories == nil {
		s.Categories = make(map[string]CategoryTotals)
	}
	for name, totals := range result.Categories {
		agg := s.Categories[name]
		agg.Bets += totals.Bets
		agg.Staked += totals.Staked
		agg.Returned += totals.Returned
		s.Categories[name] = agg
	}
}

// Median returns the median session result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the session result at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that session nets, totals and category
// breakdowns agree
func (s *Statistics) IsLedgerBalanced() bool {
	if math.Abs(s.SumNet-float64(s.TotalReturned-s.TotalStaked)) > 1e-6 {
		return false
	}
	var staked, returned int64
	for _, c := range s.Categories {
		staked += c.Staked
		returned += c.Returned
	}
	return staked == s.TotalStaked && returned == s.TotalReturned
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if s.Sessions <= 0 {
		return fmt.Errorf("invalid session count: %d", s.Sessions)
	}

	if len(s.Values) != s.Sessions {
		return fmt.Errorf("values array length (%d) does not match session count (%d)",
			len(s.Values), s.Sessions)
	}

	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: net=%.0f, staked=%d, returned=%d",
			s.SumNet, s.TotalStaked, s.TotalReturned)
	}

	if s.Winning > s.Sessions || s.Busted > s.Sessions {
		return fmt.Errorf("winning (%d) or busted (%d) sessions exceed total (%d)",
			s.Winning, s.Busted, s.Sessions)
	}

	return nil
}
