package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ashgo/ashfall/internal/config"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[rng]
seed = 42
`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rng.Seed != 42 {
		t.Fatalf("Rng.Seed = %d, want 42", cfg.Rng.Seed)
	}
	if cfg.Rates.FieldFastForwardTurns != 8 {
		t.Fatalf("Rates.FieldFastForwardTurns = %d, want default 8", cfg.Rates.FieldFastForwardTurns)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q, want default \"info\"", cfg.Logging.Level)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected Load to fail for a missing file")
	}
}

func TestLoadEnvOverridesWorldDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[world]
dir = "./on-disk"
`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv(config.WorldDirEnv, "/overridden")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Dir != "/overridden" {
		t.Fatalf("World.Dir = %q, want env override \"/overridden\"", cfg.World.Dir)
	}
}
