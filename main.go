// munsell-report runs color-category gamut calibration: it builds
// per-category gamut polyhedra for a screen population and a physical
// reference population, measures the bias between them, and fits a
// hue-dependent correction model.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/munsell.report/internal/config"
	"github.com/banshee-data/munsell.report/internal/gamut"
	"github.com/banshee-data/munsell.report/internal/version"
)

var (
	dbFile        = flag.String("db", "calibration.db", "Path to the SQLite database file")
	tuningPath    = flag.String("config", "", "Path to a tuning config JSON file (optional)")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "calibrate":
		runCalibrate()

	case "runs":
		runList()

	case "summary":
		if len(args) < 2 {
			log.Fatal("Usage: munsell-report summary <run-id>")
		}
		runSummary(args[1])

	case "migrate":
		runMigrate(args[1:])

	case "version":
		fmt.Printf("munsell-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)

	case "help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// loadRunParams resolves tuning parameters: the -config file when
// given, otherwise compiled defaults.
func loadRunParams() (gamut.RunParams, error) {
	if *tuningPath == "" {
		return gamut.DefaultRunParams(), nil
	}
	cfg, err := config.LoadTuningConfig(*tuningPath)
	if err != nil {
		return gamut.RunParams{}, err
	}
	return cfg.RunParams(), nil
}

func printUsage() {
	fmt.Print(`munsell-report - color category gamut calibration

Usage: munsell-report [flags] <command>

Commands:
  calibrate          Run the full calibration pipeline and store the report
  runs               List recorded calibration runs
  summary <run-id>   Print the stored report for a run
  migrate <action>   Manage the database schema (up, down, version, force <n>)
  version            Print build version
  help               Show this help

Flags:
`)
	flag.PrintDefaults()
}
