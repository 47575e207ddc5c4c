package gamut

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// runner.go drives the batch pipeline: fan out polyhedron builds across
// categories, fan in, compare the two populations category by category,
// aggregate, and select a correction model. One bad category never
// aborts the batch; it is recorded as skipped with its reason and the
// run continues with the rest.

// Population labels for build results and skip records.
const (
	PopulationScreen    = "screen"
	PopulationReference = "reference"
)

// BuildResult is the per-category outcome of a polyhedron build.
type BuildResult struct {
	Category string
	Poly     *Polyhedron
	Err      error
}

// SkippedCategory explains why a category produced no bias record.
type SkippedCategory struct {
	Category   string
	Population string // which population failed, or "both"
	Reason     string
}

// RunReport is the complete outcome of a calibration run: the bias
// table, its aggregates, the selected correction model with all
// candidate diagnostics, and the structured skip summary.
type RunReport struct {
	Biases    []CategoryBias
	Stats     GlobalStats
	Selection *Selection
	Bootstrap BootstrapResult
	Skipped   []SkippedCategory

	ScreenBuilt    int
	ReferenceBuilt int
}

// BuildAll constructs polyhedra for every category cloud, fanning out
// across a bounded worker pool. Results are keyed by category; build
// failures are carried in the result, never dropped.
func BuildAll(clouds map[string][]munsell.Sample, params BuildParams, workers int) map[string]BuildResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Deterministic dispatch order.
	names := make([]string, 0, len(clouds))
	for name := range clouds {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]BuildResult, len(names))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			poly, err := Build(clouds[name], params)
			results[i] = BuildResult{Category: name, Poly: poly, Err: err}
		}(i, name)
	}
	wg.Wait()

	out := make(map[string]BuildResult, len(names))
	for _, r := range results {
		out[r.Category] = r
	}
	return out
}

// Run executes the full calibration pipeline over a screen population
// and a physical-reference population of per-category sample clouds.
//
// Categories present in only one population, or whose build failed in
// either, are reported in Skipped. Model selection failures surface as
// the returned error only when no model could be fit at all; the bias
// table and aggregates are still populated in that case.
func Run(screen, reference map[string][]munsell.Sample, params RunParams) (*RunReport, error) {
	report := &RunReport{}

	screenBuilt := BuildAll(screen, params.Build, params.Workers)
	referenceBuilt := BuildAll(reference, params.Build, params.Workers)

	names := make([]string, 0, len(screenBuilt))
	for name := range screenBuilt {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := screenBuilt[name]
		r, inReference := referenceBuilt[name]
		switch {
		case s.Err != nil && inReference && r.Err != nil:
			report.Skipped = append(report.Skipped, SkippedCategory{
				Category:   name,
				Population: "both",
				Reason:     fmt.Sprintf("screen: %v; reference: %v", s.Err, r.Err),
			})
		case s.Err != nil:
			report.Skipped = append(report.Skipped, SkippedCategory{
				Category:   name,
				Population: PopulationScreen,
				Reason:     s.Err.Error(),
			})
		case !inReference:
			report.Skipped = append(report.Skipped, SkippedCategory{
				Category:   name,
				Population: PopulationReference,
				Reason:     "no reference samples for category",
			})
		case r.Err != nil:
			report.Skipped = append(report.Skipped, SkippedCategory{
				Category:   name,
				Population: PopulationReference,
				Reason:     r.Err.Error(),
			})
		default:
			report.Biases = append(report.Biases, CompareCategory(s.Poly, r.Poly, name))
		}
	}
	for name, r := range referenceBuilt {
		if _, inScreen := screenBuilt[name]; !inScreen && r.Err == nil {
			report.Skipped = append(report.Skipped, SkippedCategory{
				Category:   name,
				Population: PopulationScreen,
				Reason:     "no screen samples for category",
			})
		}
	}
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Category < report.Skipped[j].Category
	})

	for _, r := range screenBuilt {
		if r.Err == nil {
			report.ScreenBuilt++
		}
	}
	for _, r := range referenceBuilt {
		if r.Err == nil {
			report.ReferenceBuilt++
		}
	}

	if len(report.Biases) == 0 {
		return report, ErrNoBiasRecords
	}

	stats, err := Aggregate(report.Biases)
	if err != nil {
		return report, err
	}
	report.Stats = stats

	selection, err := SelectModel(report.Biases, params.Selector)
	report.Selection = selection
	if err != nil {
		return report, err
	}
	report.Bootstrap = Bootstrap(report.Biases, selection.Model, params.Selector)
	return report, nil
}
