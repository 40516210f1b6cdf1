package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"SCROLLSYNC_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SCROLLSYNC_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaultsMatchCoordinator(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := s.Coordinator()
	if err != nil {
		t.Fatalf("Coordinator: %v", err)
	}
	if cfg.Snap.Hysteresis != 0.02 || cfg.Snap.MinEase != 150*time.Millisecond || cfg.Snap.MaxEase != 350*time.Millisecond {
		t.Fatalf("unexpected snap config %+v", cfg.Snap)
	}
	if cfg.ExpectedScenes != 1 || cfg.MaxWait != time.Second || cfg.RefreshDelay != 100*time.Millisecond {
		t.Fatalf("unexpected lifecycle config %+v", cfg)
	}
	if s.LogLevel != "info" || s.LogFormat != "text" {
		t.Fatalf("unexpected log settings %q %q", s.LogLevel, s.LogFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCROLLSYNC_EXPECTED_SCENES", "3")
	t.Setenv("SCROLLSYNC_MAX_WAIT_MS", "2500")
	t.Setenv("SCROLLSYNC_SNAP_HYSTERESIS", "0.05")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := s.Coordinator()
	if err != nil {
		t.Fatalf("Coordinator: %v", err)
	}
	if cfg.ExpectedScenes != 3 || cfg.MaxWait != 2500*time.Millisecond || cfg.Snap.Hysteresis != 0.05 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestCoordinatorRejectsBadSnapConfig(t *testing.T) {
	s := Settings{SnapHysteresis: 0.5, SnapMinEaseMS: 150, SnapMaxEaseMS: 350}
	if _, err := s.Coordinator(); err == nil || !strings.Contains(err.Error(), "snap config") {
		t.Fatalf("expected snap config error, got %v", err)
	}

	s = Settings{SnapHysteresis: 0.02, SnapMinEaseMS: 400, SnapMaxEaseMS: 350}
	if _, err := s.Coordinator(); err == nil {
		t.Fatal("expected error for max ease below min ease")
	}
}
