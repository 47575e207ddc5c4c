// gen-synthetic populates a calibration database with synthetic sample
// clouds: a physical-reference population on a ring of category centers,
// and a screen population shifted by a known hue-dependent bias. Useful
// for exercising the pipeline end to end with a recoverable ground
// truth.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/banshee-data/munsell.report/internal/db"
	"github.com/banshee-data/munsell.report/internal/gamut"
	"github.com/banshee-data/munsell.report/internal/munsell"
)

func main() {
	var dbPath string
	var migrationsDir string
	var categories int
	var samplesPer int
	var seed int64
	var baseShift float64
	var harmonicAmp float64
	var noise float64

	flag.StringVar(&dbPath, "db", "calibration.db", "path to sqlite db")
	flag.StringVar(&migrationsDir, "migrations", "migrations", "path to migrations directory")
	flag.IntVar(&categories, "categories", 24, "number of color categories")
	flag.IntVar(&samplesPer, "samples", 60, "samples per category per population")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.Float64Var(&baseShift, "shift", 8, "constant hue shift in degrees")
	flag.Float64Var(&harmonicAmp, "amp", 4, "first-harmonic hue shift amplitude in degrees")
	flag.Float64Var(&noise, "noise", 1.5, "per-sample Gaussian noise sigma")
	flag.Parse()

	if categories < 1 || samplesPer < 4 {
		log.Fatalf("need at least 1 category and 4 samples per category")
	}

	database, err := db.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(migrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < categories; i++ {
		anchor := 360 * float64(i) / float64(categories)
		value := 4 + 3*rng.Float64()
		chroma := 5 + 4*rng.Float64()
		name := fmt.Sprintf("cat%03d", i)

		// True bias applied to the screen population.
		shift := baseShift + harmonicAmp*math.Cos(anchor*math.Pi/180)

		reference := cloud(rng, anchor, value, chroma, samplesPer, noise)
		screen := cloud(rng, anchor+shift, value, chroma, samplesPer, noise)

		if err := database.InsertSamples(name, gamut.PopulationReference, reference); err != nil {
			log.Fatalf("insert reference %s: %v", name, err)
		}
		if err := database.InsertSamples(name, gamut.PopulationScreen, screen); err != nil {
			log.Fatalf("insert screen %s: %v", name, err)
		}
	}

	fmt.Printf("wrote %d categories x %d samples x 2 populations to %s\n",
		categories, samplesPer, dbPath)
	fmt.Printf("true bias: %.1f + %.1f*cos(hue) degrees\n", baseShift, harmonicAmp)
}

// cloud draws a Gaussian blob around a Munsell center. Noise is applied
// in Cartesian space so the cloud stays a solid rather than an arc.
func cloud(rng *rand.Rand, hue, value, chroma float64, n int, sigma float64) []munsell.Sample {
	center := munsell.ToCartesian(hue, value, chroma)
	out := make([]munsell.Sample, 0, n)
	for i := 0; i < n; i++ {
		p := munsell.CartesianPoint{
			X: center.X + rng.NormFloat64()*sigma,
			Y: center.Y + rng.NormFloat64()*sigma,
			Z: center.Z + rng.NormFloat64()*sigma*0.3,
		}
		h, v, c := p.Munsell()
		out = append(out, munsell.NewSample(h, v, c))
	}
	return out
}
