package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"YOLOSPLIT_SEED", "YOLOSPLIT_WORKDIR", "YOLOSPLIT_UNMATCHED", "LOG_LEVEL", "LOG_FORMAT", "PORT", "YOLOSPLIT_JOB_TTL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true); err == nil {
		t.Error("Expected error for explicit missing config")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "yolosplit.yaml")
	data := `ratios:
  train: 0.8
  val: 0.2
  test: 0
seed: 7
unmatched: silent
port: "9000"
job_ttl: 90m
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Ratios = models.SplitRatios{Train: 0.8, Val: 0.2}
	want.Seed = 7
	want.Unmatched = "silent"
	want.Port = "9000"
	want.JobTTL = 90 * time.Minute
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YOLOSPLIT_SEED", "1234")
	t.Setenv("YOLOSPLIT_WORKDIR", "/scratch")
	t.Setenv("YOLOSPLIT_UNMATCHED", "silent")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "3000")
	t.Setenv("YOLOSPLIT_JOB_TTL", "2h")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Seed != 1234 || cfg.WorkDir != "/scratch" || cfg.Unmatched != "silent" || cfg.LogLevel != "debug" || cfg.Port != "3000" || cfg.JobTTL != 2*time.Hour {
		t.Errorf("Environment overrides not applied: %+v", cfg)
	}
}

func TestInvalidSeedEnv(t *testing.T) {
	t.Setenv("YOLOSPLIT_SEED", "forty-two")

	if _, err := Load("", false); err == nil {
		t.Error("Expected error for non-numeric seed")
	}
}

func TestInvalidJobTTLEnv(t *testing.T) {
	t.Setenv("YOLOSPLIT_JOB_TTL", "a day")

	if _, err := Load("", false); err == nil {
		t.Error("Expected error for unparseable duration")
	}
}

func TestInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("seed: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("Expected parse error")
	}
}
