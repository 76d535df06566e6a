package config

import (
	"testing"
	"time"
)

func TestWeekStartDay(t *testing.T) {
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"monday", time.Monday},
		{"Sunday", time.Sunday},
		{"saturday", time.Saturday},
		{"", time.Monday},
		{"someday", time.Monday},
	}
	for _, tc := range cases {
		cfg := AppConfig{WeekStart: tc.in}
		if got := cfg.WeekStartDay(); got != tc.want {
			t.Errorf("WeekStartDay(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("WEEK_START", "sunday")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "7")
	t.Setenv("ADMIN_USER_IDS", "1, 3,5")

	cfg := Load()
	if cfg.AppPort != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.AppPort)
	}
	if cfg.WeekStartDay() != time.Sunday {
		t.Errorf("expected sunday week start, got %v", cfg.WeekStartDay())
	}
	if cfg.RateLimitPerMinute != 7 {
		t.Errorf("expected rate limit 7, got %d", cfg.RateLimitPerMinute)
	}
	if !cfg.IsAdmin(3) || cfg.IsAdmin(2) {
		t.Errorf("unexpected admin set %v", cfg.AdminUserIDs)
	}
}

func TestIsAdmin_Empty(t *testing.T) {
	var cfg AppConfig
	if cfg.IsAdmin(1) {
		t.Error("expected no admins by default")
	}
}
