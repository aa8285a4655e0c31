package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Device access
	ADBPath          string
	ADBSerial        string
	ScreenResolution string // static override, e.g. "1080x1920"
	DeviceTimeout    time.Duration
	DeviceRetries    int
	DeviceRetryBase  time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Dump state
	DumpTTL      time.Duration
	StrictBounds bool

	// Device call stats window
	StatsWindow time.Duration
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none)
// into the environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("UIDUMP_API_KEY"),

		ADBPath:          envOr("ADB_PATH", "adb"),
		ADBSerial:        os.Getenv("ADB_SERIAL"),
		ScreenResolution: os.Getenv("SCREEN_RESOLUTION"),
		DeviceTimeout:    envDuration("DEVICE_TIMEOUT", 10*time.Second),
		DeviceRetries:    envInt("DEVICE_RETRIES", 3),
		DeviceRetryBase:  envDuration("DEVICE_RETRY_BASE", 500*time.Millisecond),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB

		DumpTTL:      envDuration("DUMP_TTL", 1*time.Hour),
		StrictBounds: envBool("STRICT_BOUNDS", false),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.DeviceTimeout <= 0 {
		cfg.DeviceTimeout = 10 * time.Second
	}
	if cfg.DeviceRetries <= 0 {
		cfg.DeviceRetries = 3
	}
	if cfg.DeviceRetryBase <= 0 {
		cfg.DeviceRetryBase = 500 * time.Millisecond
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.DumpTTL <= 0 {
		cfg.DumpTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("UIDUMP_API_KEY is required")
	}
	if c.ScreenResolution != "" {
		if _, _, err := uinode.ParseScreenSize(c.ScreenResolution); err != nil {
			return fmt.Errorf("SCREEN_RESOLUTION: %w", err)
		}
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
