package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsFirstRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	if cfg.ServiceURL != "" || cfg.Local {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := &Config{Dir: dir, ServiceURL: "https://duet.example", AnonKey: "anon", Local: true}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ServiceURL != cfg.ServiceURL || got.AnonKey != cfg.AnonKey || !got.Local {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DUET_URL", "https://env.example")
	t.Setenv("DUET_ANON_KEY", "env-key")

	dir := t.TempDir()
	cfg := &Config{Dir: dir, ServiceURL: "https://file.example", AnonKey: "file-key"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ServiceURL != "https://env.example" || got.AnonKey != "env-key" {
		t.Fatalf("env overrides not applied: %+v", got)
	}
}
