package table

// Multipliers are quoted "for one": a winning bet returns amount*multiplier,
// which already includes the original stake. Straight pays 35 to 1, so 36
// for 1.
var multipliers = [...]int{
	Straight: 36,
	Split:    18,
	Street:   12,
	Corner:   9,
	Line:     6,
	Column:   3,
	Dozen:    3,
	Red:      2,
	Black:    2,
	Odd:      2,
	Even:     2,
	Low:      2,
	High:     2,
}

// Multiplier returns the "for one" payout multiplier of c, or 0 for an unknown
// category.
func Multiplier(c Category) int {
	if c < Straight || int(c) >= len(multipliers) {
		return 0
	}
	return multipliers[c]
}

// Payout returns what a winning bet of amount on c returns, stake included.
func Payout(c Category, amount int) int {
	return amount * Multiplier(c)
}
