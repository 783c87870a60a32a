package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // BOOKING_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Store drivers accepted by BOOKING_STORE_DRIVER.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort int

	StoreDriver string
	SQLiteDSN   string
	BoltPath    string

	SessionSecret string
	SessionTTL    time.Duration

	AuthLatency      time.Duration
	BookingLatency   time.Duration
	OperationTimeout time.Duration
	PersistSlotState bool
	DemoUserID       string

	ReconcileSchedule string
	ReconcileCacheTTL time.Duration

	AuthRatePerSecond float64
	AuthRateBurst     int

	Location *time.Location
	LogLevel slog.Level
	LogFile  string
}

// LoadDotEnv reads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Missing required values and
// unparsable values are collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		StoreDriver:       StoreSQLite,
		SQLiteDSN:         "data/booking.db",
		BoltPath:          "data/booking.bolt",
		SessionTTL:        24 * time.Hour,
		AuthLatency:       500 * time.Millisecond,
		BookingLatency:    time.Second,
		OperationTimeout:  10 * time.Second,
		DemoUserID:        "user-1",
		ReconcileSchedule: "@every 1h",
		ReconcileCacheTTL: time.Minute,
		AuthRatePerSecond: 1,
		AuthRateBurst:     5,
		Location:          time.UTC,
		LogLevel:          slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if value := env("BOOKING_HTTP_PORT"); value != "" {
		port, err := cast.ToIntE(value)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := strings.ToLower(env("BOOKING_STORE_DRIVER")); value != "" {
		switch value {
		case StoreMemory, StoreSQLite, StoreBolt:
			cfg.StoreDriver = value
		default:
			invalid = append(invalid, "BOOKING_STORE_DRIVER")
		}
	}
	if dsn := env("BOOKING_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if path := env("BOOKING_BOLT_PATH"); path != "" {
		cfg.BoltPath = path
	}

	if secret := env("BOOKING_SESSION_SECRET"); secret == "" {
		missing = append(missing, "BOOKING_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	durations := []struct {
		key       string
		dst       *time.Duration
		allowZero bool
	}{
		{"BOOKING_SESSION_TTL", &cfg.SessionTTL, false},
		{"BOOKING_AUTH_LATENCY", &cfg.AuthLatency, true},
		{"BOOKING_BOOKING_LATENCY", &cfg.BookingLatency, true},
		{"BOOKING_OPERATION_TIMEOUT", &cfg.OperationTimeout, false},
		{"BOOKING_RECONCILE_CACHE_TTL", &cfg.ReconcileCacheTTL, false},
	}
	for _, d := range durations {
		value := env(d.key)
		if value == "" {
			continue
		}
		parsed, err := cast.ToDurationE(value)
		if err != nil || parsed < 0 || (parsed == 0 && !d.allowZero) {
			invalid = append(invalid, d.key)
			continue
		}
		*d.dst = parsed
	}

	if value := env("BOOKING_PERSIST_SLOT_STATE"); value != "" {
		persist, err := cast.ToBoolE(value)
		if err != nil {
			invalid = append(invalid, "BOOKING_PERSIST_SLOT_STATE")
		} else {
			cfg.PersistSlotState = persist
		}
	}

	if value, ok := os.LookupEnv("BOOKING_DEMO_USER_ID"); ok {
		cfg.DemoUserID = strings.TrimSpace(value)
	}
	// an explicitly empty schedule disables the job
	if value, ok := os.LookupEnv("BOOKING_RECONCILE_SCHEDULE"); ok {
		cfg.ReconcileSchedule = strings.TrimSpace(value)
	}

	if value := env("BOOKING_AUTH_RATE_PER_SECOND"); value != "" {
		perSecond, err := cast.ToFloat64E(value)
		if err != nil || perSecond <= 0 {
			invalid = append(invalid, "BOOKING_AUTH_RATE_PER_SECOND")
		} else {
			cfg.AuthRatePerSecond = perSecond
		}
	}
	if value := env("BOOKING_AUTH_RATE_BURST"); value != "" {
		burst, err := cast.ToIntE(value)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "BOOKING_AUTH_RATE_BURST")
		} else {
			cfg.AuthRateBurst = burst
		}
	}

	if value := env("BOOKING_TIMEZONE"); value != "" {
		loc, err := time.LoadLocation(value)
		if err != nil {
			invalid = append(invalid, "BOOKING_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if value := env("BOOKING_LOG_LEVEL"); value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "BOOKING_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}
	cfg.LogFile = env("BOOKING_LOG_FILE")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
