// Package config loads the analysis profile (.witness.yaml).
//
// The profile is optional: every field has a default, and a missing
// file is not an error. Flags override the profile; the profile
// overrides the defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"witness/internal/analyze"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = ".witness.yaml"

// DefaultDBPath is the default dataset store location.
const DefaultDBPath = ".witness/witness.db"

// Profile is the analysis configuration.
type Profile struct {
	// FiguresDir is where charts and derived CSVs are written.
	FiguresDir string `yaml:"figures_dir"`
	// Format selects the table rendering: "ascii" or "markdown".
	Format string `yaml:"format"`
	// DBPath is the dataset store location for ingest/report/status.
	DBPath string `yaml:"db_path"`
	// Gates holds the pass/fail thresholds for `analyze --gates`.
	Gates analyze.GateConfig `yaml:"gates"`
}

// Default returns the profile used when no file is present.
func Default() *Profile {
	return &Profile{
		FiguresDir: "figures",
		Format:     "ascii",
		DBPath:     DefaultDBPath,
		Gates: analyze.GateConfig{
			// The 32-bit GMP sweep lands around 1e-5 overall; an order
			// of magnitude of headroom keeps the gate meaningful
			// without tripping on small-sample noise.
			MaxOverallFPRate:   1e-4,
			MaxBucketFPRate:    1e-2,
			MinCompositeSample: 1000,
		},
	}
}

// Load reads the profile at path. path == "" means DefaultPath, and in
// that case a missing file returns the defaults silently. An explicit
// path that does not exist is an error.
func Load(path string) (*Profile, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return p, nil
}

func (p *Profile) validate() error {
	if p.Format != "ascii" && p.Format != "markdown" {
		return fmt.Errorf("format must be \"ascii\" or \"markdown\", got %q", p.Format)
	}
	if p.FiguresDir == "" {
		return fmt.Errorf("figures_dir must not be empty")
	}
	if p.Gates.MaxOverallFPRate < 0 || p.Gates.MaxOverallFPRate > 1 {
		return fmt.Errorf("gates.max_overall_fp_rate must be in [0,1]")
	}
	if p.Gates.MaxBucketFPRate < 0 || p.Gates.MaxBucketFPRate > 1 {
		return fmt.Errorf("gates.max_bucket_fp_rate must be in [0,1]")
	}
	if p.Gates.MinCompositeSample < 0 {
		return fmt.Errorf("gates.min_composite_sample must be >= 0")
	}
	return nil
}
