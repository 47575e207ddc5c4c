package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/munsell.report/internal/gamut"
)

// CalibrationRun is one recorded calibration session: the parameters it
// ran with, its lifecycle status, and the run-level result summary.
type CalibrationRun struct {
	RunID           string
	Params          gamut.RunParams
	Status          string // "running", "completed", or "failed"
	ErrorMessage    *string
	StartedAtUnix   float64
	CompletedAtUnix *float64

	ScreenBuilt    int
	ReferenceBuilt int
	Skipped        []gamut.SkippedCategory

	BootstrapPoint float64
	BootstrapLower float64
	BootstrapUpper float64
}

// StartRun records a new calibration run and returns its ID.
func (db *DB) StartRun(params gamut.RunParams) (string, error) {
	runID := uuid.New().String()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run params: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO calibration_runs (run_id, params_json, status, started_at_unix)
		VALUES (?, ?, 'running', ?)
	`, runID, string(paramsJSON), float64(time.Now().UnixNano())/1e9)
	if err != nil {
		return "", fmt.Errorf("failed to insert calibration run: %w", err)
	}

	return runID, nil
}

// FailRun marks a run as failed with an error message.
func (db *DB) FailRun(runID, errMsg string) error {
	_, err := db.Exec(`
		UPDATE calibration_runs
		SET status = 'failed', error_message = ?, completed_at_unix = ?
		WHERE run_id = ?
	`, errMsg, float64(time.Now().UnixNano())/1e9, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// SaveReport persists a completed run report: the bias table, every
// candidate correction model, and the run-level summary, all in one
// transaction. The run status becomes "completed".
func (db *DB) SaveReport(runID string, report *gamut.RunReport) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, bias := range report.Biases {
		hueDefined := 0
		if bias.HueDefined {
			hueDefined = 1
		}
		_, err := tx.Exec(`
			INSERT INTO category_bias (
				run_id, category, hue_offset, value_offset, chroma_offset,
				hue_defined, anchor_hue, screen_samples, reference_samples
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, bias.Category, bias.HueOffset, bias.ValueOffset, bias.ChromaOffset,
			hueDefined, bias.AnchorHue, bias.ScreenSamples, bias.ReferenceSamples)
		if err != nil {
			return fmt.Errorf("failed to insert bias for %s: %w", bias.Category, err)
		}
	}

	if report.Selection != nil {
		for _, cand := range report.Selection.Candidates {
			if cand.Model == nil {
				continue
			}
			selected := 0
			if cand.Model == report.Selection.Model {
				selected = 1
			}
			if err := insertModel(tx, runID, cand.Model, selected, cand.Reason); err != nil {
				return err
			}
		}
		if report.Selection.Piecewise != nil {
			if err := insertModel(tx, runID, report.Selection.Piecewise, 0, ""); err != nil {
				return err
			}
		}
	}

	skippedJSON, err := json.Marshal(report.Skipped)
	if err != nil {
		return fmt.Errorf("failed to marshal skip summary: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE calibration_runs
		SET status = 'completed', completed_at_unix = ?,
			screen_built = ?, reference_built = ?, skipped_json = ?,
			bootstrap_point = ?, bootstrap_lower = ?, bootstrap_upper = ?
		WHERE run_id = ?
	`, float64(time.Now().UnixNano())/1e9,
		report.ScreenBuilt, report.ReferenceBuilt, string(skippedJSON),
		nullIfNaN(report.Bootstrap.PointEstimate),
		nullIfNaN(report.Bootstrap.Lower),
		nullIfNaN(report.Bootstrap.Upper),
		runID)
	if err != nil {
		return fmt.Errorf("failed to update calibration run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

func insertModel(tx *sql.Tx, runID string, model *gamut.CorrectionModel, selected int, reason string) error {
	coeffsJSON, err := json.Marshal(model.Coeffs)
	if err != nil {
		return fmt.Errorf("failed to marshal model coefficients: %w", err)
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	_, err = tx.Exec(`
		INSERT INTO correction_models (
			run_id, kind, fourier_order, coeffs_json,
			train_error, cv_error, selected, reject_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, model.Kind.String(), model.Order, string(coeffsJSON),
		nullIfNaN(model.Diagnostics.TrainError),
		nullIfNaN(model.Diagnostics.CVError),
		selected, reasonPtr)
	if err != nil {
		return fmt.Errorf("failed to insert %s model: %w", model.Kind, err)
	}
	return nil
}

// GetRun loads a calibration run record by ID.
func (db *DB) GetRun(runID string) (*CalibrationRun, error) {
	run := &CalibrationRun{RunID: runID}
	var paramsJSON string
	var skippedJSON sql.NullString
	var screenBuilt, referenceBuilt sql.NullInt64
	var point, lower, upper sql.NullFloat64

	err := db.QueryRow(`
		SELECT params_json, status, error_message, started_at_unix, completed_at_unix,
			screen_built, reference_built, skipped_json,
			bootstrap_point, bootstrap_lower, bootstrap_upper
		FROM calibration_runs WHERE run_id = ?
	`, runID).Scan(&paramsJSON, &run.Status, &run.ErrorMessage,
		&run.StartedAtUnix, &run.CompletedAtUnix,
		&screenBuilt, &referenceBuilt, &skippedJSON,
		&point, &lower, &upper)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, fmt.Errorf("failed to parse run params: %w", err)
	}
	if skippedJSON.Valid {
		if err := json.Unmarshal([]byte(skippedJSON.String), &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to parse skip summary: %w", err)
		}
	}
	run.ScreenBuilt = int(screenBuilt.Int64)
	run.ReferenceBuilt = int(referenceBuilt.Int64)
	run.BootstrapPoint = floatOrNaN(point)
	run.BootstrapLower = floatOrNaN(lower)
	run.BootstrapUpper = floatOrNaN(upper)

	return run, nil
}

// ListRuns returns all calibration runs, most recent first.
func (db *DB) ListRuns() ([]string, error) {
	rows, err := db.Query(`SELECT run_id FROM calibration_runs ORDER BY started_at_unix DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadBiases returns the bias table stored for a run, in insertion
// order.
func (db *DB) LoadBiases(runID string) ([]gamut.CategoryBias, error) {
	rows, err := db.Query(`
		SELECT category, hue_offset, value_offset, chroma_offset,
			hue_defined, anchor_hue, screen_samples, reference_samples
		FROM category_bias WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query biases: %w", err)
	}
	defer rows.Close()

	var biases []gamut.CategoryBias
	for rows.Next() {
		var b gamut.CategoryBias
		var hueDefined int
		if err := rows.Scan(&b.Category, &b.HueOffset, &b.ValueOffset, &b.ChromaOffset,
			&hueDefined, &b.AnchorHue, &b.ScreenSamples, &b.ReferenceSamples); err != nil {
			return nil, fmt.Errorf("failed to scan bias: %w", err)
		}
		b.HueDefined = hueDefined != 0
		biases = append(biases, b)
	}
	return biases, rows.Err()
}

// LoadSelectedModel reconstructs the selected correction model for a
// run. Returns sql.ErrNoRows via the wrapped error when the run has no
// selected model.
func (db *DB) LoadSelectedModel(runID string) (*gamut.CorrectionModel, error) {
	var kind string
	var order int
	var coeffsJSON string
	var trainErr, cvErr sql.NullFloat64

	err := db.QueryRow(`
		SELECT kind, fourier_order, coeffs_json, train_error, cv_error
		FROM correction_models WHERE run_id = ? AND selected = 1
	`, runID).Scan(&kind, &order, &coeffsJSON, &trainErr, &cvErr)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected model for %s: %w", runID, err)
	}

	model := &gamut.CorrectionModel{Order: order}
	switch kind {
	case gamut.ModelConstant.String():
		model.Kind = gamut.ModelConstant
	case gamut.ModelPiecewise.String():
		model.Kind = gamut.ModelPiecewise
		model.Breaks = gamut.DefaultPiecewiseBreaks
	case gamut.ModelFourier.String():
		model.Kind = gamut.ModelFourier
	default:
		return nil, fmt.Errorf("unknown model kind %q for run %s", kind, runID)
	}
	if err := json.Unmarshal([]byte(coeffsJSON), &model.Coeffs); err != nil {
		return nil, fmt.Errorf("failed to parse model coefficients: %w", err)
	}
	model.Diagnostics.TrainError = floatOrNaN(trainErr)
	model.Diagnostics.CVError = floatOrNaN(cvErr)

	return model, nil
}

// SQLite stores NaN as NULL; keep the round trip explicit.
func nullIfNaN(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
