package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Source names where the season comes from at startup.
type Source string

const (
	SourceNone    Source = "none"
	SourceFeed    Source = "feed"
	SourceFile    Source = "file"
	SourceArchive Source = "archive"
)

type Config struct {
	Addr           string
	TrustedProxies []string
	CORSOrigins    []string

	Source      Source
	FeedBaseURL string
	FeedTimeout time.Duration
	ImportPath  string
	DBPath      string
	Location    *time.Location

	AdminTokenHash string
	FlagBaseURL    string
	LogLevel       logrus.Level
}

// Load reads the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:           env("ADDR", ":8080"),
		TrustedProxies: list(env("TRUSTED_PROXIES", "127.0.0.1,::1")),
		CORSOrigins:    list(env("CORS_ORIGINS", "*")),
		Source:         Source(strings.ToLower(env("SOURCE", string(SourceNone)))),
		FeedBaseURL:    env("FEED_BASE_URL", "http://localhost:3001/api/v1"),
		ImportPath:     env("IMPORT_PATH", ""),
		DBPath:         env("DB_PATH", "xstandings.db"),
		AdminTokenHash: env("ADMIN_TOKEN_HASH", ""),
		FlagBaseURL:    env("FLAG_BASE_URL", "https://flagsapi.codeaid.io"),
	}

	d, err := time.ParseDuration(env("FEED_TIMEOUT", "10s"))
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("FEED_TIMEOUT: invalid duration %q", os.Getenv("FEED_TIMEOUT"))
	}
	cfg.FeedTimeout = d

	if cfg.Location, err = time.LoadLocation(env("TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	if cfg.LogLevel, err = logrus.ParseLevel(env("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.Source {
	case SourceNone, SourceFeed, SourceArchive:
	case SourceFile:
		if cfg.ImportPath == "" {
			return nil, fmt.Errorf("IMPORT_PATH is required for SOURCE=file")
		}
	default:
		return nil, fmt.Errorf("SOURCE: unknown source %q", cfg.Source)
	}
	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// list splits a comma-separated value, dropping blanks.
func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
