package simulator

import (
	"fmt"
	"io"
	"slices"

	"github.com/lox/ruleta/internal/fileutil"
	"github.com/lox/ruleta/internal/statistics"
)

// Report is the JSON summary of a simulation run
type Report struct {
	Strategy       string     `json:"strategy"`
	Sessions       int        `json:"sessions"`
	RoundsLimit    int        `json:"roundsLimit"`
	Unit           int        `json:"unit"`
	InitialBalance int        `json:"initialBalance"`
	Seed           int64      `json:"seed"`
	Rounds         int        `json:"rounds"`
	TotalStaked    int64      `json:"totalStaked"`
	TotalReturned  int64      `json:"totalReturned"`
	RTP            float64    `json:"rtp"`
	HouseEdge      float64    `json:"houseEdge"`
	MeanNet        float64    `json:"meanNet"`
	MedianNet      float64    `json:"medianNet"`
	StdDev         float64    `json:"stdDev"`
	CI95           [2]float64 `json:"ci95"`
	P05            float64    `json:"p05"`
	P95            float64    `json:"p95"`
	WinningRate    float64    `json:"winningRate"`
	BustRate       float64    `json:"bustRate"`

	Categories map[string]CategoryReport `json:"categories"`
}

// CategoryReport is the money in and out for one bet category
type CategoryReport struct {
	statistics.CategoryTotals
	RTP float64 `json:"rtp"`
}

// NewReport summarises stats for the configuration that produced them
func NewReport(config Config, stats *statistics.Statistics) Report {
	low, high := stats.ConfidenceInterval95()
	report := Report{
		Strategy:       config.Strategy,
		Sessions:       stats.Sessions,
		RoundsLimit:    config.Rounds,
		Unit:           config.Unit,
		InitialBalance: config.InitialBalance,
		Seed:           config.Seed,
		Rounds:         stats.Rounds,
		TotalStaked:    stats.TotalStaked,
		TotalReturned:  stats.TotalReturned,
		RTP:            stats.RTP(),
		HouseEdge:      stats.HouseEdge(),
		MeanNet:        stats.Mean(),
		MedianNet:      stats.Median(),
		StdDev:         stats.StdDev(),
		CI95:           [2]float64{low, high},
		P05:            stats.Percentile(0.05),
		P95:            stats.Percentile(0.95),
		Categories:     make(map[string]CategoryReport, len(stats.Categories)),
	}
	if stats.Sessions > 0 {
		report.WinningRate = float64(stats.Winning) / float64(stats.Sessions)
		report.BustRate = float64(stats.Busted) / float64(stats.Sessions)
	}
	for name, totals := range stats.Categories {
		report.Categories[name] = CategoryReport{CategoryTotals: totals, RTP: totals.RTP()}
	}
	return report
}

// WriteReport writes the report as indented JSON, replacing filename
// atomically.
func WriteReport(filename string, report Report) error {
	return fileutil.WriteJSONAtomic(filename, report, 0o644)
}

// PrintSummary prints a human-readable summary of the report
func PrintSummary(w io.Writer, report Report) {
	fmt.Fprintf(w, "\n=== %s: %d sessions x up to %d rounds ===\n", report.Strategy, report.Sessions, report.RoundsLimit)
	fmt.Fprintf(w, "Rounds played: %d\n", report.Rounds)
	fmt.Fprintf(w, "Staked: %d  Returned: %d\n", report.TotalStaked, report.TotalReturned)
	fmt.Fprintf(w, "RTP: %.4f  House edge: %.2f%%\n", report.RTP, report.HouseEdge*100)

	fmt.Fprintf(w, "\n=== SESSION RESULTS ===\n")
	fmt.Fprintf(w, "Mean net: %.2f  Median: %.2f  Std Dev: %.2f\n", report.MeanNet, report.MedianNet, report.StdDev)
	fmt.Fprintf(w, "95%% CI: [%.2f, %.2f]\n", report.CI95[0], report.CI95[1])
	fmt.Fprintf(w, "Percentiles: P5=%.0f, P95=%.0f\n", report.P05, report.P95)
	fmt.Fprintf(w, "Ahead: %.1f%%  Busted: %.1f%%\n", report.WinningRate*100, report.BustRate*100)

	if len(report.Categories) > 0 {
		fmt.Fprintf(w, "\n=== BY CATEGORY ===\n")
		names := make([]string, 0, len(report.Categories))
		for name := range report.Categories {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			c := report.Categories[name]
			fmt.Fprintf(w, "%-9s %8d bets  RTP %.4f\n", name, c.Bets, c.RTP)
		}
	}
}
