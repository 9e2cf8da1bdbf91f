package config

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", time.Minute},
		{"valid", "90s", 90 * time.Second},
		{"zero", "0", time.Minute},
		{"zero with unit", "0s", time.Minute},
		{"negative", "-5m", time.Minute},
		{"garbage", "soon", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_DurationsArePositive(t *testing.T) {
	t.Setenv("SEARCH_TIMEOUT", "0")
	t.Setenv("FEED_REFRESH_INTERVAL", "-1m")
	t.Setenv("SESSION_IDLE_TIMEOUT", "0s")

	cfg := Load()
	if cfg.SearchTimeout != 10*time.Second {
		t.Errorf("SearchTimeout = %v, want 10s", cfg.SearchTimeout)
	}
	if cfg.FeedRefreshInterval != 15*time.Minute {
		t.Errorf("FeedRefreshInterval = %v, want 15m", cfg.FeedRefreshInterval)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, want 30m", cfg.SessionIdleTimeout)
	}
}

func TestLoad_HistoryRetention(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 30 * 24 * time.Hour},
		{"0", 0},
		{"-1h", 30 * 24 * time.Hour},
		{"48h", 48 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("HISTORY_RETENTION", tt.value)
			if got := Load().HistoryRetention; got != tt.want {
				t.Errorf("HistoryRetention = %v, want %v", got, tt.want)
			}
		})
	}
}
