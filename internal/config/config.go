// Package config holds the calculator's tunable settings.
// Values are loaded once at startup from an optional YAML file; anything
// not present in the file keeps its default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application settings (in-memory representation).
type Config struct {
	// Data-project market API.
	APIAddress        string `yaml:"api_address" json:"api_address"`
	APITimeScale      int    `yaml:"api_time_scale" json:"api_time_scale"`
	APIQualities      []int  `yaml:"api_qualities" json:"api_qualities"`
	DownloadChunkSize int    `yaml:"download_chunk_size" json:"download_chunk_size"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	PriceCacheHours   int    `yaml:"price_cache_hours" json:"price_cache_hours"`

	// Price estimation.
	DeviationTolerance float64 `yaml:"deviation_tolerance" json:"deviation_tolerance"`
	OutlierBandFactor  float64 `yaml:"outlier_band_factor" json:"outlier_band_factor"`
	FallbackIQRWidth   float64 `yaml:"fallback_iqr_width" json:"fallback_iqr_width"`

	// Crafting economics.
	BaseCraftingBonus float64 `yaml:"base_crafting_bonus" json:"base_crafting_bonus"`
	FocusBonus        float64 `yaml:"focus_bonus" json:"focus_bonus"`

	// Travel cost and report filtering.
	OneTileCost           float64 `yaml:"one_tile_cost" json:"one_tile_cost"`
	ProfitPercentageLimit float64 `yaml:"profit_percentage_limit" json:"profit_percentage_limit"`

	// Refresh scheduling.
	RefreshIntervalHours int `yaml:"refresh_interval_hours" json:"refresh_interval_hours"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		APIAddress:        "https://www.albion-online-data.com/api/v2/stats",
		APITimeScale:      6,
		APIQualities:      []int{1, 2, 3, 4},
		DownloadChunkSize: 16,
		RequestsPerMinute: 100,
		PriceCacheHours:   12,

		DeviationTolerance: 4,
		OutlierBandFactor:  1.3,
		FallbackIQRWidth:   50,

		BaseCraftingBonus: 0.18,
		FocusBonus:        0.59,

		OneTileCost:           1.05,
		ProfitPercentageLimit: 500,

		RefreshIntervalHours: 12,
	}
}

// Load reads the YAML config at path on top of the defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
