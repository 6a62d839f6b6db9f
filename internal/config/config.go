// Package config parses the daemon's command-line flags and an optional
// YAML overrides file for non-functional tuning knobs.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config holds the daemon's required runtime configuration.
type Config struct {
	ScanDirectories []string
	Verbosity       int
	Port            int
	OverridesPath   string
	DataDir         string
	ModelPath       string
}

// DefaultDataDir is used when --data-dir is not given: the Bleve index,
// initial-walk sentinel, and path ledger all live under it.
const DefaultDataDir = "beaconfind-data"

// verboseFlag accumulates repeated -v/--verbose occurrences, up to 4.
type verboseFlag int

func (v *verboseFlag) String() string { return fmt.Sprintf("%d", int(*v)) }

func (v *verboseFlag) Set(string) error {
	if int(*v) < 4 {
		*v++
	}
	return nil
}

func (v *verboseFlag) IsBoolFlag() bool { return true } // allows bare -v (no value)

// Parse parses args (typically os.Args[1:]) into a Config. It returns an
// error for a missing --scan-directories, a directory that does not
// exist, or any flag parsing failure.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("beaconfindd", flag.ContinueOnError)

	var scanDirs string
	fs.StringVar(&scanDirs, "scan-directories", "", "comma-separated absolute paths to index (required)")
	fs.StringVar(&scanDirs, "s", "", "shorthand for --scan-directories")

	var verbosity verboseFlag
	fs.Var(&verbosity, "verbose", "increase log verbosity (repeatable, up to 4)")
	fs.Var(&verbosity, "v", "shorthand for --verbose")

	port := fs.Int("p", 8080, "listening port for the query HTTP endpoint")

	overridesPath := fs.String("overrides", "", "optional YAML file with non-functional tuning overrides")
	dataDir := fs.String("data-dir", DefaultDataDir, "directory holding the full-text index, sentinel, and path ledger")
	modelPath := fs.String("model-path", "", "optional ONNX model path for the image-classifier extractor; omitted disables it")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if scanDirs == "" {
		return nil, fmt.Errorf("--scan-directories (-s) is required")
	}

	dirs := strings.Split(scanDirs, ",")
	for i, d := range dirs {
		dirs[i] = strings.TrimSpace(d)
		info, err := os.Stat(dirs[i])
		if err != nil {
			return nil, fmt.Errorf("scan directory %q: %w", dirs[i], err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("scan directory %q is not a directory", dirs[i])
		}
	}

	return &Config{
		ScanDirectories: dirs,
		Verbosity:       int(verbosity),
		Port:            *port,
		OverridesPath:   *overridesPath,
		DataDir:         *dataDir,
		ModelPath:       *modelPath,
	}, nil
}
