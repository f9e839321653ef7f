// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "context"

// TierBand configures one tier table entry. The final band's Upper may
// be omitted to mean unbounded.
type TierBand struct {
	Upper float64 `koanf:"upper"`
	Label string  `koanf:"label"`
	Color string  `koanf:"color"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CategoriesPath locates the category definition artifact (JSON).
	CategoriesPath string `koanf:"categories_path"`

	// ModelPath locates the base regressor artifact (JSON).
	ModelPath string `koanf:"model_path"`

	// CalibrationPath locates the calibration curve artifact (JSON).
	CalibrationPath string `koanf:"calibration_path"`

	// ReferenceDBPath locates the SQLite reference dataset.
	ReferenceDBPath string `koanf:"reference_db_path"`

	// ScorerField overrides the scorer column name for model artifacts
	// that declare the older naming. Empty means the current name.
	ScorerField string `koanf:"scorer_field"`

	// TopN is the default similar-transfer count per prediction.
	TopN int `koanf:"top_n"`

	// MaxTopN caps the top_n a client may request.
	MaxTopN int `koanf:"max_top_n"`

	// Tiers overrides the built-in five-tier table when non-empty.
	Tiers []TierBand `koanf:"tiers"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		CategoriesPath:  "artifacts/category_mappings.json",
		ModelPath:       "artifacts/model.json",
		CalibrationPath: "artifacts/calibration.json",
		ReferenceDBPath: "artifacts/transfers.db",
		TopN:            3,
		MaxTopN:         25,
	}
}
