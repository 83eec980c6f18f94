package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drawdown-service/internal/analysis"
	"drawdown-service/internal/config"
	"drawdown-service/internal/drawdown"
	"drawdown-service/internal/ingest"
	"drawdown-service/internal/logger"
	"drawdown-service/internal/model"

	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "drawdown":
		cmdDrawdown(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli drawdown --data examples/nifty.csv --asset-type nifty --out results/drawdown.csv")
	fmt.Println("  cli drawdown --data prices.csv --asset-type multi_asset --config examples/config.yaml --steps")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - output CSV has one date,drawdown row per price after the first")
	fmt.Println("  - --steps also writes price, daily_return, cumulative_return and peak")
}

func cmdDrawdown(args []string) {
	fs := flag.NewFlagSet("drawdown", flag.ExitOnError)
	dataPath := fs.String("data", "", "Path to price CSV")
	assetType := fs.String("asset-type", "nifty", "Asset category (selects the price column)")
	cfgPath := fs.String("config", "", "Optional: path to YAML config")
	outPath := fs.String("out", "results/drawdown.csv", "Output CSV path")
	steps := fs.Bool("steps", false, "Write intermediate columns instead of date,drawdown")
	logLevel := fs.String("log-level", "warn", "Log level")
	_ = fs.Parse(args)

	logger.InitWithWriter("drawdown-cli", *logLevel, os.Stderr)

	if *dataPath == "" {
		fmt.Println("--data is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}

	cat, ok := cfg.Category(strings.TrimSpace(*assetType))
	if !ok {
		fmt.Printf("unknown asset type %q (valid: %s)\n", *assetType, strings.Join(cfg.CategoryNames(), ", "))
		os.Exit(2)
	}

	f, err := os.Open(*dataPath)
	if err != nil {
		fail(err)
	}
	series, stats, err := ingest.ParseCSVWithStats(f, cat, ingest.Options{DateLayouts: cfg.DateLayouts})
	f.Close()
	if err != nil {
		fail(err)
	}
	log.Debug().
		Int("rows", stats.Rows).
		Int("dropped_missing", stats.DroppedMissing).
		Int("dropped_price", stats.DroppedPrice).
		Msg("prices loaded")

	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fail(err)
	}

	result := drawdown.DropNonFinite(drawdown.Compute(series))
	if *steps {
		rows := drawdown.Steps(series)
		if err := drawdown.WriteStepsCSV(*outPath, rows); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(rows), *outPath)
	} else {
		if err := drawdown.WriteCSV(*outPath, result); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(result), *outPath)
	}

	printSummary(cat.Name, analysis.Summarize(result))
}

func printSummary(category string, s analysis.Summary) {
	if s.Count == 0 {
		fmt.Printf("%s: no drawdown points (need at least two usable prices)\n", category)
		return
	}
	fmt.Printf("%s: %d points %s .. %s\n", category, s.Count, fmtDate(s.Start), fmtDate(s.End))
	fmt.Printf("Max drawdown=%.2f%% on %s\n", s.MaxDrawdown*100, fmtDate(s.MaxDrawdownDate))
	fmt.Printf("Current drawdown=%.2f%% Last peak=%s\n", s.CurrentDrawdown*100, fmtDate(s.LastPeakDate))
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(model.DateLayout)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
