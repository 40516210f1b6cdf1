package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
)

// #region env

// ParseEnv parses environment variables into target using env struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// #endregion env

// #region settings

// Settings is the process-wide configuration shared by the binaries.
// Durations are given in milliseconds to keep the variables shell friendly.
type Settings struct {
	DB             string  `env:"SCROLLSYNC_DB" envDefault:"scroll_trace.db"`
	Addr           string  `env:"SCROLLSYNC_ADDR" envDefault:"localhost:50061"`
	SnapHysteresis float64 `env:"SCROLLSYNC_SNAP_HYSTERESIS" envDefault:"0.02"`
	SnapMinEaseMS  int     `env:"SCROLLSYNC_SNAP_MIN_EASE_MS" envDefault:"150"`
	SnapMaxEaseMS  int     `env:"SCROLLSYNC_SNAP_MAX_EASE_MS" envDefault:"350"`
	ExpectedScenes int     `env:"SCROLLSYNC_EXPECTED_SCENES" envDefault:"1"`
	MaxWaitMS      int     `env:"SCROLLSYNC_MAX_WAIT_MS" envDefault:"1000"`
	RefreshDelayMS int     `env:"SCROLLSYNC_REFRESH_DELAY_MS" envDefault:"100"`
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string  `env:"LOG_FORMAT" envDefault:"text"`
	OTelEndpoint   string  `env:"SCROLLSYNC_OTEL_ENDPOINT"`
}

// Load reads Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Coordinator converts the settings into a coordinator configuration.
// Settle detection and echo tolerance keep their defaults.
func (s Settings) Coordinator() (coordinator.Config, error) {
	cfg := coordinator.DefaultConfig()
	cfg.Snap.Hysteresis = s.SnapHysteresis
	cfg.Snap.MinEase = ms(s.SnapMinEaseMS)
	cfg.Snap.MaxEase = ms(s.SnapMaxEaseMS)
	if err := cfg.Snap.Validate(); err != nil {
		return coordinator.Config{}, fmt.Errorf("snap config: %w", err)
	}
	if s.ExpectedScenes < 0 {
		return coordinator.Config{}, fmt.Errorf("expected scenes must be >= 0, got %d", s.ExpectedScenes)
	}
	cfg.ExpectedScenes = s.ExpectedScenes
	cfg.MaxWait = ms(s.MaxWaitMS)
	cfg.RefreshDelay = ms(s.RefreshDelayMS)
	return cfg, nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// #endregion settings
