package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds all configuration. Sensitive values have no in-code
// defaults and must come from the config file or the environment.
type AppConfig struct {
	AppPort     string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Gin framework configuration
	GinMode        string
	AllowedOrigins []string
	RateLimitPerMinute int
	// Time windows and streaks
	Timezone  string
	WeekStart string
	// Admin users allowed to apply negative point adjustments
	AdminUserIDs []uint
	// Redis stats cache
	RedisHost        string
	RedisPort        int
	RedisDB          int
	RedisPassword    string
	StatsCacheTTLSec int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads configuration with the precedence: config/config.json ->
// defaults -> environment variable overrides.
func Load() AppConfig {
	var cfg AppConfig
	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return cfg
}

func loadJSONConfig(path string, cfg *AppConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, cfg)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.DBHost == "" {
		cfg.DBHost = "127.0.0.1"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "3306"
	}
	if cfg.DBName == "" {
		cfg.DBName = "choretab"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 120
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.WeekStart == "" {
		cfg.WeekStart = "monday"
	}
	if cfg.RedisPort == 0 {
		cfg.RedisPort = 6379
	}
	if cfg.StatsCacheTTLSec == 0 {
		cfg.StatsCacheTTLSec = 60
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setStr(&cfg.AppPort, "APP_PORT")
	setStr(&cfg.DatabaseURI, "DATABASE_URI")
	setStr(&cfg.DBHost, "DB_HOST")
	setStr(&cfg.DBPort, "DB_PORT")
	setStr(&cfg.DBUser, "DB_USER")
	setStr(&cfg.DBPassword, "DB_PASSWORD")
	setStr(&cfg.DBName, "DB_NAME")
	setStr(&cfg.GinMode, "GIN_MODE")
	setStr(&cfg.Timezone, "TIMEZONE")
	setStr(&cfg.WeekStart, "WEEK_START")
	setStr(&cfg.RedisHost, "REDIS_HOST")
	setStr(&cfg.RedisPassword, "REDIS_PASSWORD")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.LogPath, "LOG_PATH")
	setInt(&cfg.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	setInt(&cfg.RedisPort, "REDIS_PORT")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setInt(&cfg.StatsCacheTTLSec, "STATS_CACHE_TTL_SEC")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			cfg.AllowedOrigins = out
		}
	}
	if v := os.Getenv("ADMIN_USER_IDS"); v != "" {
		var ids []uint
		for _, p := range strings.Split(v, ",") {
			if n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32); err == nil {
				ids = append(ids, uint(n))
			}
		}
		if len(ids) > 0 {
			cfg.AdminUserIDs = ids
		}
	}
}

// Location resolves the configured timezone, falling back to the system zone
// on an unknown name.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// WeekStartDay maps the configured week start name to a weekday; unknown
// names fall back to Monday.
func (c AppConfig) WeekStartDay() time.Weekday {
	switch strings.ToLower(c.WeekStart) {
	case "sunday":
		return time.Sunday
	case "monday", "":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

// IsAdmin reports whether a user id appears in the configured admin list.
func (c AppConfig) IsAdmin(userID uint) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
