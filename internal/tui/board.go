package tui

import (
	"fmt"
	"strings"

	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// numberStyle renders n in its pocket colour
func numberStyle(n wheel.Number) string {
	label := fmt.Sprintf("%2d", int(n))
	switch n.Color() {
	case wheel.Red:
		return RedNumberStyle.Render(label)
	case wheel.Black:
		return BlackNumberStyle.Render(label)
	default:
		return GreenNumberStyle.Render(label)
	}
}

// renderBoard draws the betting layout with zero on the left, the top line
// holding the third column. Numbers covered by an active bet are underlined
// and the winning number is shown in reverse.
func renderBoard(snap table.Snapshot) string {
	covered := make(map[wheel.Number]bool)
	for _, bet := range snap.Bets {
		for _, n := range bet.Numbers {
			covered[n] = true
		}
	}

	cell := func(n wheel.Number) string {
		s := numberStyle(n)
		if covered[n] {
			s = StakedStyle.Render(s)
		}
		if snap.WinningNumber != nil && *snap.WinningNumber == n {
			s = WinningStyle.Render(s)
		}
		return s
	}

	var b strings.Builder
	for line := 2; line >= 0; line-- {
		if line == 1 {
			b.WriteString(cell(wheel.Zero))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(" |")
		for row := 0; row < 12; row++ {
			b.WriteString(" ")
			b.WriteString(cell(wheel.Number(row*3 + line + 1)))
		}
		b.WriteString(" | ")
		b.WriteString(InfoStyle.Render(fmt.Sprintf("col %d", line+1)))
		b.WriteString("\n")
	}
	b.WriteString(InfoStyle.Render("     1st 12       2nd 12       3rd 12"))
	return b.String()
}

// renderRecent shows recent results most recent first
func renderRecent(numbers []wheel.Number) string {
	if len(numbers) == 0 {
		return InfoStyle.Render("none yet")
	}
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = numberStyle(n)
	}
	return strings.Join(parts, " ")
}
