package table

import "github.com/lox/ruleta/internal/wheel"

// BetResult is the outcome of one bet for a drawn number.
type BetResult struct {
	Bet    Bet  `json:"bet"`
	Won    bool `json:"won"`
	Payout int  `json:"payout"`
}

// Settle computes the winnings of bets for the winning number. A bet that
// covers the number returns amount*Multiplier, everything else returns 0.
func Settle(bets []Bet, winning wheel.Number) (int, []BetResult) {
	total := 0
	results := make([]BetResult, 0, len(bets))
	for _, b := range bets {
		r := BetResult{Bet: b}
		if b.Covers(winning) {
			r.Won = true
			r.Payout = Payout(b.Category, b.Amount)
			total += r.Payout
		}
		results = append(results, r)
	}
	return total, results
}

// Settlement summarises a settled round.
type Settlement struct {
	Winning       wheel.Number `json:"winning"`
	Color         wheel.Color  `json:"color"`
	TotalStaked   int          `json:"totalStaked"`
	TotalWinnings int          `json:"totalWinnings"`
	BalanceBefore int          `json:"balanceBefore"`
	BalanceAfter  int          `json:"balanceAfter"`
	Results       []BetResult  `json:"results"`
}

// Net returns winnings minus stakes for the round.
func (s Settlement) Net() int {
	return s.TotalWinnings - s.TotalStaked
}
