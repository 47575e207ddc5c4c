package main

import (
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/munsell.report/internal/db"
	"github.com/banshee-data/munsell.report/internal/gamut"
)

func openDB() *db.DB {
	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return database
}

// runCalibrate executes the full pipeline against the stored sample
// clouds and persists the report under a new run ID.
func runCalibrate() {
	params, err := loadRunParams()
	if err != nil {
		log.Fatalf("Failed to load tuning config: %v", err)
	}

	database := openDB()
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	screen, err := database.LoadClouds(gamut.PopulationScreen)
	if err != nil {
		log.Fatalf("Failed to load screen samples: %v", err)
	}
	reference, err := database.LoadClouds(gamut.PopulationReference)
	if err != nil {
		log.Fatalf("Failed to load reference samples: %v", err)
	}
	log.Printf("[calibrate] loaded %d screen and %d reference categories", len(screen), len(reference))

	runID, err := database.StartRun(params)
	if err != nil {
		log.Fatalf("Failed to record run: %v", err)
	}
	log.Printf("[calibrate] run %s started", runID)

	report, err := gamut.Run(screen, reference, params)
	if err != nil {
		if failErr := database.FailRun(runID, err.Error()); failErr != nil {
			log.Printf("[calibrate] failed to record run failure: %v", failErr)
		}
		printSkipped(report.Skipped)
		log.Fatalf("Calibration failed: %v", err)
	}

	if err := database.SaveReport(runID, report); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	log.Printf("[calibrate] run %s complete", runID)
	printReport(report)
}

func runList() {
	database := openDB()
	defer database.Close()

	ids, err := database.ListRuns()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(ids) == 0 {
		fmt.Println("no calibration runs recorded")
		return
	}
	for _, id := range ids {
		run, err := database.GetRun(id)
		if err != nil {
			log.Fatalf("Failed to load run %s: %v", id, err)
		}
		fmt.Printf("%s  %-9s  %d/%d categories built\n",
			run.RunID, run.Status, run.ScreenBuilt, run.ReferenceBuilt)
	}
}

func runSummary(runID string) {
	database := openDB()
	defer database.Close()

	run, err := database.GetRun(runID)
	if err != nil {
		log.Fatalf("Failed to load run: %v", err)
	}

	fmt.Printf("run %s (%s)\n", run.RunID, run.Status)
	if run.ErrorMessage != nil {
		fmt.Printf("  error: %s\n", *run.ErrorMessage)
	}
	fmt.Printf("  built: %d screen, %d reference\n", run.ScreenBuilt, run.ReferenceBuilt)
	printSkipped(run.Skipped)

	biases, err := database.LoadBiases(runID)
	if err != nil {
		log.Fatalf("Failed to load bias table: %v", err)
	}
	for _, b := range biases {
		hue := fmt.Sprintf("%+7.2f", b.HueOffset)
		if !b.HueDefined {
			hue = "   n/a "
		}
		fmt.Printf("  %-20s hue %s  value %+6.2f  chroma %+6.2f  (%d/%d samples)\n",
			b.Category, hue, b.ValueOffset, b.ChromaOffset, b.ScreenSamples, b.ReferenceSamples)
	}

	model, err := database.LoadSelectedModel(runID)
	if err != nil {
		fmt.Println("  no selected correction model")
		return
	}
	fmt.Printf("  model: %s order %d, cv error %.3f  coeffs %v\n",
		model.Kind, model.Order, model.Diagnostics.CVError, model.Coeffs)
	fmt.Printf("  bootstrap cv interval: [%.3f, %.3f]\n", run.BootstrapLower, run.BootstrapUpper)
}

func runMigrate(args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: munsell-report migrate <up|down|version|force <n>>")
	}

	database := openDB()
	defer database.Close()

	switch args[0] {
	case "up":
		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("[migrate] all migrations applied")

	case "down":
		if err := database.MigrateDown(*migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("[migrate] rolled back one migration")

	case "version":
		version, dirty, err := database.MigrateVersion(*migrationsDir)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		fmt.Printf("version %d (dirty: %v)\n", version, dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: munsell-report migrate force <version>")
		}
		var version int
		if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
			log.Fatalf("Invalid version %q: %v", args[1], err)
		}
		if err := database.MigrateForce(*migrationsDir, version); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("[migrate] forced version to %d", version)

	default:
		fmt.Printf("Unknown migrate action: %s\n", args[0])
		os.Exit(1)
	}
}

func printReport(report *gamut.RunReport) {
	fmt.Printf("bias table: %d categories (%d hue-excluded), %d skipped\n",
		report.Stats.Categories, report.Stats.HueExcluded, len(report.Skipped))
	printSkipped(report.Skipped)

	fmt.Printf("hue offset:    mean %+7.2f  stddev %6.2f (weighted %+7.2f / %6.2f)\n",
		report.Stats.Hue.Unweighted.Mean, report.Stats.Hue.Unweighted.StdDev,
		report.Stats.Hue.Weighted.Mean, report.Stats.Hue.Weighted.StdDev)
	fmt.Printf("value offset:  mean %+7.2f  stddev %6.2f (weighted %+7.2f / %6.2f)\n",
		report.Stats.Value.Unweighted.Mean, report.Stats.Value.Unweighted.StdDev,
		report.Stats.Value.Weighted.Mean, report.Stats.Value.Weighted.StdDev)
	fmt.Printf("chroma offset: mean %+7.2f  stddev %6.2f (weighted %+7.2f / %6.2f)\n",
		report.Stats.Chroma.Unweighted.Mean, report.Stats.Chroma.Unweighted.StdDev,
		report.Stats.Chroma.Weighted.Mean, report.Stats.Chroma.Weighted.StdDev)

	if report.Selection == nil || report.Selection.Model == nil {
		return
	}
	model := report.Selection.Model
	fmt.Printf("selected model: %s order %d, train %.3f, cv %.3f\n",
		model.Kind, model.Order, model.Diagnostics.TrainError, model.Diagnostics.CVError)
	for _, cand := range report.Selection.Candidates {
		status := "viable"
		switch {
		case cand.Err != nil:
			status = "unfit: " + cand.Err.Error()
		case cand.Rejected:
			status = "rejected: " + cand.Reason
		case cand.Model == model:
			status = "selected"
		}
		cv := "   n/a"
		if cand.Model != nil {
			cv = fmt.Sprintf("%6.3f", cand.Model.Diagnostics.CVError)
		}
		fmt.Printf("  order %d: cv %s  %s\n", cand.Order, cv, status)
	}
	fmt.Printf("bootstrap: %d/%d resamples, cv interval [%.3f, %.3f]\n",
		report.Bootstrap.Succeeded, report.Bootstrap.Iterations,
		report.Bootstrap.Lower, report.Bootstrap.Upper)
}

func printSkipped(skipped []gamut.SkippedCategory) {
	for _, s := range skipped {
		fmt.Printf("  skipped %s (%s): %s\n", s.Category, s.Population, s.Reason)
	}
}
