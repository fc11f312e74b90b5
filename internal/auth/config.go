package auth

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds token secrets, lifetimes and cookie policy.
type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	CookieSecure  bool
}

// ConfigFromEnv reads ACCESS_TOKEN_* / REFRESH_TOKEN_* and COOKIE_SECURE.
// Expiry values accept Go durations ("15m") or whole days ("10d").
func ConfigFromEnv() Config {
	secure := true
	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		secure = v
	}
	return Config{
		AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTTL:     parseExpiry(os.Getenv("ACCESS_TOKEN_EXPIRY"), 15*time.Minute),
		RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTTL:    parseExpiry(os.Getenv("REFRESH_TOKEN_EXPIRY"), 10*24*time.Hour),
		CookieSecure:  secure,
	}
}

func parseExpiry(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return def
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
