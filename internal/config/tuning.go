// Package config loads calibration tuning parameters from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/munsell.report/internal/gamut"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for non-compiled default overrides.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for calibration
// parameters. All fields are pointers so a partial JSON file overrides
// only what it names; everything else keeps the compiled defaults from
// the gamut package.
type TuningConfig struct {
	// Polyhedron construction
	PeelLayers *int `json:"peel_layers,omitempty"`

	// Model selection
	MaxOrder            *int     `json:"max_order,omitempty"`
	OverfitRatio        *float64 `json:"overfit_ratio,omitempty"`
	CVJumpThreshold     *float64 `json:"cv_jump_threshold,omitempty"`
	NearMinTolerance    *float64 `json:"near_min_tolerance,omitempty"`
	BootstrapIterations *int     `json:"bootstrap_iterations,omitempty"`
	BootstrapSeed       *int64   `json:"bootstrap_seed,omitempty"`

	// Execution
	Workers *int `json:"workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields
// omitted from the JSON file retain their default values, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.PeelLayers != nil && *c.PeelLayers < 0 {
		return fmt.Errorf("peel_layers must be non-negative, got %d", *c.PeelLayers)
	}
	if c.MaxOrder != nil && (*c.MaxOrder < 0 || *c.MaxOrder > 12) {
		return fmt.Errorf("max_order must be between 0 and 12, got %d", *c.MaxOrder)
	}
	if c.OverfitRatio != nil && *c.OverfitRatio <= 1 {
		return fmt.Errorf("overfit_ratio must be above 1, got %f", *c.OverfitRatio)
	}
	if c.CVJumpThreshold != nil && *c.CVJumpThreshold < 0 {
		return fmt.Errorf("cv_jump_threshold must be non-negative, got %f", *c.CVJumpThreshold)
	}
	if c.NearMinTolerance != nil && *c.NearMinTolerance < 0 {
		return fmt.Errorf("near_min_tolerance must be non-negative, got %f", *c.NearMinTolerance)
	}
	if c.BootstrapIterations != nil && *c.BootstrapIterations < 0 {
		return fmt.Errorf("bootstrap_iterations must be non-negative, got %d", *c.BootstrapIterations)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// RunParams builds gamut.RunParams from the config, filling unset
// fields from the compiled defaults.
func (c *TuningConfig) RunParams() gamut.RunParams {
	params := gamut.DefaultRunParams()
	if c.PeelLayers != nil {
		params.Build.PeelLayers = *c.PeelLayers
	}
	if c.MaxOrder != nil {
		params.Selector.MaxOrder = *c.MaxOrder
	}
	if c.OverfitRatio != nil {
		params.Selector.OverfitRatio = *c.OverfitRatio
	}
	if c.CVJumpThreshold != nil {
		params.Selector.CVJumpThreshold = *c.CVJumpThreshold
	}
	if c.NearMinTolerance != nil {
		params.Selector.NearMinTolerance = *c.NearMinTolerance
	}
	if c.BootstrapIterations != nil {
		params.Selector.BootstrapIterations = *c.BootstrapIterations
	}
	if c.BootstrapSeed != nil {
		params.Selector.BootstrapSeed = *c.BootstrapSeed
	}
	if c.Workers != nil {
		params.Workers = *c.Workers
	}
	return params
}
