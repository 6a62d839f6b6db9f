package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides holds non-functional tuning knobs that have sensible defaults
// and are never required for correctness. Source commits after every
// watcher event by default; a deployment under heavy write load may want
// to batch commits instead, per the commit-cadence trade-off this type
// exists to expose.
type Overrides struct {
	DebounceSeconds int `yaml:"debounce_seconds"`
	WorkerPoolSize  int `yaml:"worker_pool_size"`
	CommitBatchSize int `yaml:"commit_batch_size"`
}

// DefaultOverrides returns the daemon's built-in defaults.
func DefaultOverrides() Overrides {
	return Overrides{
		DebounceSeconds: 10,
		WorkerPoolSize:  runtime.NumCPU(),
		CommitBatchSize: 1,
	}
}

// LoadOverrides reads path if non-empty, merging any set fields onto the
// defaults. An empty path returns the defaults unchanged.
func LoadOverrides(path string) (Overrides, error) {
	o := DefaultOverrides()
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read overrides file: %w", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse overrides file: %w", err)
	}
	return o, nil
}
