package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("DOMU_CONFIG", "")
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Fatalf("expected development default, got %q", cfg.Environment)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics should default to enabled")
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domu.yaml")
	content := []byte("environment: production\nhttp:\n  addr: \":9090\"\nbootstrap:\n  seed_demo_building: true\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DOMU_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production, got %q", cfg.Environment)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.HTTP.Addr)
	}
	if !cfg.Bootstrap.SeedDemoBuilding {
		t.Fatal("expected seed flag from file")
	}
}

func TestLoadFailsOnExplicitMissingFile(t *testing.T) {
	t.Setenv("DOMU_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicit missing config path")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domu.yaml")
	if err := os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DOMU_CONFIG", path)
	t.Setenv("DOMU_HTTP_ADDR", ":7070")
	t.Setenv("DOMU_ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("expected env override, got %q", cfg.HTTP.Addr)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production from env, got %q", cfg.Environment)
	}
}

func TestParseBoolFallsBack(t *testing.T) {
	if parseBool("not-a-bool", true) != true {
		t.Fatal("expected fallback on junk input")
	}
	if parseBool("false", true) != false {
		t.Fatal("expected parsed value")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
