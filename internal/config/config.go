package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// PublicURL is the externally visible base URL of this instance.
	// Used to build share links and to decide which links count as external.
	PublicURL string

	// State persistence
	DataDir string

	// Remote markdown fetching
	FetchTimeout time.Duration
	FetchProxies []string

	// Upload limits
	MaxUploadBytes int64 // markdown/text uploads
	MaxImportBytes int64 // pdf/docx/html/csv imports

	// Recents
	RecentLimit    int
	RecentTruncate int

	// Editor
	AutosaveDebounce time.Duration
	AutosaveInterval time.Duration
	HistoryDepth     int

	// Viewer defaults
	DefaultTheme string

	// Share links
	ShareURLWarnLen int
}

// knownThemes are the themes the viewer ships styling for.
var knownThemes = map[string]bool{
	"light": true,
	"dark":  true,
}

// KnownTheme reports whether the viewer has styling for the named theme.
func KnownTheme(name string) bool {
	return knownThemes[name]
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PublicURL: envOr("PUBLIC_URL", "http://localhost:8090"),

		DataDir: envOr("DATA_DIR", "./data"),

		FetchTimeout: envDuration("FETCH_TIMEOUT", 20*time.Second),
		FetchProxies: envList("FETCH_PROXIES",
			"https://corsproxy.io/?",
			"https://api.allorigins.win/raw?url=",
		),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		MaxImportBytes: envInt64("MAX_IMPORT_BYTES", 52428800), // 50MB

		RecentLimit:    envInt("RECENT_LIMIT", 10),
		RecentTruncate: envInt("RECENT_TRUNCATE", 1000),

		AutosaveDebounce: envDuration("AUTOSAVE_DEBOUNCE", 2*time.Second),
		AutosaveInterval: envDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		HistoryDepth:     envInt("HISTORY_DEPTH", 100),

		DefaultTheme: envOr("DEFAULT_THEME", "light"),

		ShareURLWarnLen: envInt("SHARE_URL_WARN_LEN", 2000),
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 * 1024 * 1024
	}
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = 52428800
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	if cfg.RecentTruncate <= 0 {
		cfg.RecentTruncate = 1000
	}
	if cfg.AutosaveDebounce <= 0 {
		cfg.AutosaveDebounce = 2 * time.Second
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = 100
	}
	if cfg.ShareURLWarnLen <= 0 {
		cfg.ShareURLWarnLen = 2000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if !knownThemes[c.DefaultTheme] {
		return fmt.Errorf("unknown DEFAULT_THEME %q", c.DefaultTheme)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback ...string) []string {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
