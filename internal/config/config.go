package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	PlatformDesktop = "desktop"
	PlatformFCM     = "fcm"
	PlatformNone    = "none"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	DBPath    string
	Env       string
	LogFile   string
	SentryDSN string

	Platform           string
	FCMCredentialsFile string
	FCMDeviceTokens    []string
	PlatformAutoClose  time.Duration

	CheckInterval   time.Duration
	SchedulerBuffer int
	ToastDuration   time.Duration
	Timezone        string
}

func Default() Config {
	return Config{
		DBPath:            "runtrack.db",
		Env:               EnvDevelopment,
		LogFile:           "runtrack.log",
		Platform:          PlatformDesktop,
		PlatformAutoClose: 5 * time.Second,
		CheckInterval:     15 * time.Minute,
		SchedulerBuffer:   64,
		ToastDuration:     4 * time.Second,
	}
}

// NewViper returns a viper instance reading RUNTRACK_* environment variables.
// Keys use dashes; RUNTRACK_DB_PATH is read as "db-path".
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RUNTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads an optional .env file into the process environment.
func LoadDotEnv(log *slog.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug("no .env file found, using environment variables")
	}
}

// FromViper overlays values found in v on base. Invalid values keep the base
// value and are logged.
func FromViper(base Config, v *viper.Viper, log *slog.Logger) Config {
	if log == nil {
		log = slog.Default()
	}
	cfg := base
	r := reader{v: v, log: log}

	cfg.DBPath = r.str("db-path", cfg.DBPath)
	cfg.LogFile = r.str("log-file", cfg.LogFile)
	cfg.SentryDSN = r.str("sentry-dsn", cfg.SentryDSN)
	cfg.FCMCredentialsFile = r.str("fcm-credentials-file", cfg.FCMCredentialsFile)
	cfg.Env = r.oneOf("env", cfg.Env, EnvDevelopment, EnvProduction)
	cfg.Platform = r.oneOf("platform", cfg.Platform, PlatformDesktop, PlatformFCM, PlatformNone)
	if raw := r.str("fcm-device-tokens", ""); raw != "" {
		cfg.FCMDeviceTokens = splitList(raw)
	}
	cfg.CheckInterval = r.duration("check-interval", cfg.CheckInterval)
	cfg.ToastDuration = r.duration("toast-duration", cfg.ToastDuration)
	cfg.PlatformAutoClose = r.duration("platform-auto-close", cfg.PlatformAutoClose)
	cfg.SchedulerBuffer = r.positiveInt("scheduler-buffer", cfg.SchedulerBuffer)

	if tz := r.str("timezone", ""); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			log.Warn("config invalid timezone, using default", "key", "timezone", "value", tz, "error", err)
		} else {
			cfg.Timezone = tz
		}
	}
	return cfg
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type reader struct {
	v   *viper.Viper
	log *slog.Logger
}

func (r reader) str(key, def string) string {
	raw := strings.TrimSpace(r.v.GetString(key))
	if raw == "" {
		return def
	}
	return raw
}

func (r reader) oneOf(key, def string, allowed ...string) string {
	raw := strings.ToLower(r.str(key, def))
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	r.log.Warn("config invalid value, using default", "key", key, "value", raw, "default", def)
	return def
}

func (r reader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		r.log.Warn("config invalid duration, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}

func (r reader) positiveInt(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		r.log.Warn("config invalid integer, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
