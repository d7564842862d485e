package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// Command is a parsed line from the action input
type Command struct {
	Name     string
	Category table.Category
	Numbers  []wheel.Number
	Amount   int // 0 means the selected chip
}

// numbersNeeded is how many numbers follow each inside category. Dozen and
// column take their index instead.
var numbersNeeded = map[table.Category]int{
	table.Straight: 1,
	table.Split:    2,
	table.Street:   3,
	table.Corner:   4,
	table.Line:     6,
	table.Dozen:    1,
	table.Column:   1,
}

// ParseCommand parses one line of input. Bets take the form
//
//	bet <category> [numbers...] [amount]
//	bet <number> [amount]
//
// where the count of numbers is fixed by the category, so a trailing value
// is always the amount.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Name: "help"}, nil
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "bet", "b":
		return parseBet(args)
	case "chip", "c":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: chip <amount>")
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("invalid chip %q", args[0])
		}
		return Command{Name: "chip", Amount: amount}, nil
	case "reset":
		if len(args) == 1 && args[0] == "balance" {
			return Command{Name: "rebuy"}, nil
		}
		return Command{Name: "reset"}, nil
	case "spin", "s":
		return Command{Name: "spin"}, nil
	case "clear", "stats", "help", "rebuy", "quit":
		return Command{Name: name}, nil
	case "exit", "q":
		return Command{Name: "quit"}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q, try 'help'", name)
	}
}

func parseBet(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("usage: bet <category> [numbers...] [amount]")
	}

	cmd := Command{Name: "bet"}
	if _, err := strconv.Atoi(args[0]); err == nil {
		// A bare number is a straight-up bet
		cmd.Category = table.Straight
	} else {
		category, err := table.ParseCategory(args[0])
		if err != nil {
			return Command{}, err
		}
		cmd.Category = category
		args = args[1:]
	}

	need := numbersNeeded[cmd.Category]
	if len(args) < need || len(args) > need+1 {
		return Command{}, fmt.Errorf("%s bet takes %d number(s) and an optional amount", cmd.Category, need)
	}

	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(strings.TrimPrefix(arg, "$"))
		if err != nil {
			return Command{}, fmt.Errorf("invalid value %q", arg)
		}
		values[i] = v
	}
	if len(values) > need {
		cmd.Amount = values[need]
		if cmd.Amount <= 0 {
			return Command{}, fmt.Errorf("amount must be positive")
		}
	}

	switch cmd.Category {
	case table.Dozen, table.Column:
		cmd.Numbers = table.Cover(cmd.Category, values[0])
		if cmd.Numbers == nil {
			return Command{}, fmt.Errorf("%s must be 1, 2 or 3", cmd.Category)
		}
	default:
		if need == 0 {
			cmd.Numbers = table.Cover(cmd.Category, 0)
			break
		}
		for _, v := range values[:need] {
			cmd.Numbers = append(cmd.Numbers, wheel.Number(v))
		}
	}
	return cmd, nil
}

const helpText = `Commands:
  bet <n> [amount]                 straight up on n
  bet split|street|corner|line <numbers...> [amount]
  bet dozen|column <1-3> [amount]
  bet red|black|odd|even|low|high [amount]
  chip <amount>                    select chip (used when amount is omitted)
  spin                             close betting and spin the wheel
  clear                            take back all bets
  reset                            refund bets and restart the timer
  reset balance                    start over with a fresh bankroll
  stats                            recent results summary
  quit`
