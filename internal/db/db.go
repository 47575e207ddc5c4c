// Package db persists calibration inputs and outputs in SQLite: sample
// clouds for the screen and physical-reference populations, calibration
// run records, per-category bias rows, and fitted correction models.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/munsell.report/internal/gamut"
	"github.com/banshee-data/munsell.report/internal/munsell"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the SQLite database at path. The schema is
// managed by migrations; call MigrateUp before first use.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent access.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{sqlDB}, nil
}

// InsertSamples stores a batch of samples for one category and
// population in a single transaction.
func (db *DB) InsertSamples(category, population string, samples []munsell.Sample) error {
	if population != gamut.PopulationScreen && population != gamut.PopulationReference {
		return fmt.Errorf("unknown population %q", population)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (category, population, hue, value, chroma, weight)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(category, population, s.Hue, s.Value, s.Chroma, s.Weight); err != nil {
			return fmt.Errorf("failed to insert sample for %s: %w", category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}
	return nil
}

// LoadClouds returns every sample cloud for one population, keyed by
// category name.
func (db *DB) LoadClouds(population string) (map[string][]munsell.Sample, error) {
	rows, err := db.Query(`
		SELECT category, hue, value, chroma, weight
		FROM samples
		WHERE population = ?
		ORDER BY category, id
	`, population)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	clouds := make(map[string][]munsell.Sample)
	for rows.Next() {
		var category string
		var s munsell.Sample
		if err := rows.Scan(&category, &s.Hue, &s.Value, &s.Chroma, &s.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		clouds[category] = append(clouds[category], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return clouds, nil
}

// Categories returns the distinct category names present in either
// population, sorted.
func (db *DB) Categories() ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT category FROM samples ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountSamples returns the number of stored samples for a population.
func (db *DB) CountSamples(population string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM samples WHERE population = ?`, population).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}
