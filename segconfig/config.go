// Package segconfig carries tunable deployment parameters for processes
// built on segalloc — it is deliberately outside the core package, which
// spec.md keeps free of any configuration-file concern: segalloc.New
// takes already-resolved values, never a Config.
package segconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the knobs a deployment might want to retune without a
// recompile. DefaultArenaGrowth and PagesCommitGranularity are sized in
// bytes; ExactFitBins/TotalBins describe the bin layout a process
// intends to use when constructing its own segalloc.Allocator (the core
// package's own bin.go constants are fixed at compile time — these
// exist for documentation/validation of an operator's expectations, and
// for future bin-layout variants, not to reconfigure bin.go itself).
type Config struct {
	ExactFitBins           int    `json:"exactFitBins"`
	TotalBins              int    `json:"totalBins"`
	DefaultArenaGrowth     uint64 `json:"defaultArenaGrowth"`
	PagesCommitGranularity uint64 `json:"pagesCommitGranularity"`
}

// Default returns the configuration matching the core package's
// compiled-in bin layout (segalloc.exactFitBins/totalBins aren't
// exported, so these mirror them by value rather than by reference).
func Default() Config {
	return Config{
		ExactFitBins:           32,
		TotalBins:              64,
		DefaultArenaGrowth:     1 << 20,
		PagesCommitGranularity: 1 << 16,
	}
}

// Load reads and parses a JSON config file, filling in any field absent
// from the file with Default()'s value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("segconfig: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("segconfig: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that a Config's values are internally consistent.
func (c Config) Validate() error {
	if c.ExactFitBins <= 0 {
		return fmt.Errorf("segconfig: exactFitBins must be positive, got %d", c.ExactFitBins)
	}
	if c.TotalBins <= c.ExactFitBins {
		return fmt.Errorf("segconfig: totalBins (%d) must exceed exactFitBins (%d)", c.TotalBins, c.ExactFitBins)
	}
	if c.DefaultArenaGrowth == 0 {
		return fmt.Errorf("segconfig: defaultArenaGrowth must be positive")
	}
	if c.PagesCommitGranularity == 0 {
		return fmt.Errorf("segconfig: pagesCommitGranularity must be positive")
	}
	return nil
}
