package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"witness/internal/config"
)

func TestLoad_MissingDefaultPathUsesDefaults(t *testing.T) {
	// Run from an empty dir so no stray .witness.yaml is picked up.
	chdir(t, t.TempDir())

	p, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingExplicitPathFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("explicit missing config should be an error")
	}
}

func TestLoad_ProfileOverridesDefaults(t *testing.T) {
	path := writeProfile(t, `
figures_dir: out/figs
format: markdown
gates:
  max_overall_fp_rate: 0.001
`)
	p, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.FiguresDir != "out/figs" || p.Format != "markdown" {
		t.Errorf("overrides not applied: %+v", p)
	}
	if p.Gates.MaxOverallFPRate != 0.001 {
		t.Errorf("gate override not applied: %+v", p.Gates)
	}
	// Unset fields keep defaults.
	if p.DBPath != config.DefaultDBPath {
		t.Errorf("db_path should default, got %q", p.DBPath)
	}
	if p.Gates.MinCompositeSample != config.Default().Gates.MinCompositeSample {
		t.Errorf("unset gate should default: %+v", p.Gates)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad format", "format: csv\n", "format"},
		{"bad rate", "gates:\n  max_overall_fp_rate: 2\n", "max_overall_fp_rate"},
		{"empty figures dir", "figures_dir: \"\"\n", "figures_dir"},
		{"not yaml", ": : :\n", "parse config"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := config.Load(writeProfile(t, c.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
