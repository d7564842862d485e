package wheel

// Numbers returns all 37 pockets in ascending order.
func Numbers() []Number {
	out := make([]Number, 0, Pockets)
	for n := Zero; n <= Max; n++ {
		out = append(out, n)
	}
	return out
}

// Filter returns the pockets 1-36 for which keep returns true.
func Filter(keep func(Number) bool) []Number {
	var out []Number
	for n := Number(1); n <= Max; n++ {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Dozen returns the twelve numbers of dozen which, or nil if which is not 1-3.
func Dozen(which int) []Number {
	if which < 1 || which > 3 {
		return nil
	}
	return Filter(func(n Number) bool { return InDozen(n, which) })
}

// Column returns the twelve numbers of column which, or nil if which is not 1-3.
func Column(which int) []Number {
	if which < 1 || which > 3 {
		return nil
	}
	return Filter(func(n Number) bool { return InColumn(n, which) })
}

func Reds() []Number   { return Filter(IsRed) }
func Blacks() []Number { return Filter(IsBlack) }
func Odds() []Number   { return Filter(IsOdd) }
func Evens() []Number  { return Filter(IsEven) }
func Lows() []Number   { return Filter(IsLow) }
func Highs() []Number  { return Filter(IsHigh) }
