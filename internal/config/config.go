// Package config loads runtime settings from defaults, an optional .env file
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/litescript/ls-exosky/internal/scene"
	"github.com/litescript/ls-exosky/internal/starfield"
	"github.com/litescript/ls-exosky/internal/state"
)

// DefaultEnvFile is read when no env file is named explicitly. It is
// optional.
const DefaultEnvFile = ".env"

// Config is the complete runtime configuration.
type Config struct {
	Scene         scene.Config
	Timing        state.Timing
	RotationSpeed float64
	Logging       LoggingConfig
	Server        ServerConfig
}

// LoggingConfig selects the log level and optional log file.
type LoggingConfig struct {
	Level string
	File  string // empty logs to stderr in headless and serve modes
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	RateLimit   RateLimitConfig
}

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scene:         scene.DefaultConfig(),
		Timing:        state.DefaultTiming(),
		RotationSpeed: scene.DefaultRotationSpeed,
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
		},
	}
}

// Load builds the configuration. Values in the process environment win over
// values in envFile. An empty envFile reads DefaultEnvFile if it exists.
func Load(envFile string) (*Config, error) {
	fileVars := map[string]string{}
	switch {
	case envFile != "":
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		fileVars = vars
	default:
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			vars, err := godotenv.Read(DefaultEnvFile)
			if err != nil {
				return nil, fmt.Errorf("read env file %s: %w", DefaultEnvFile, err)
			}
			fileVars = vars
		}
	}

	l := &loader{file: fileVars}
	cfg := Default()

	cfg.Scene.StarCount = l.getInt("EXOSKY_STAR_COUNT", cfg.Scene.StarCount)
	cfg.Scene.StarRadius = l.getFloat("EXOSKY_STAR_RADIUS", cfg.Scene.StarRadius)
	cfg.Timing.Intro = l.getDuration("EXOSKY_INTRO_DURATION", cfg.Timing.Intro)
	cfg.Timing.Fade = l.getDuration("EXOSKY_FADE_DURATION", cfg.Timing.Fade)
	cfg.Timing.Loading = l.getDuration("EXOSKY_LOADING_DURATION", cfg.Timing.Loading)
	cfg.RotationSpeed = l.getFloat("EXOSKY_ROTATION_SPEED", cfg.RotationSpeed)

	cfg.Logging.Level = l.getString("EXOSKY_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = l.getString("EXOSKY_LOG_FILE", cfg.Logging.File)

	cfg.Server.Addr = l.getString("EXOSKY_ADDR", cfg.Server.Addr)
	cfg.Server.CORSOrigins = l.getList("EXOSKY_CORS_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.RateLimit.Enabled = l.getBool("EXOSKY_RATE_LIMIT_ENABLED", cfg.Server.RateLimit.Enabled)
	cfg.Server.RateLimit.RequestsPerSecond = l.getFloat("EXOSKY_RATE_LIMIT_RPS", cfg.Server.RateLimit.RequestsPerSecond)
	cfg.Server.RateLimit.BurstSize = l.getInt("EXOSKY_RATE_LIMIT_BURST", cfg.Server.RateLimit.BurstSize)

	if l.err != nil {
		return nil, fmt.Errorf("load configuration: %w", l.err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the generator and server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Scene.StarCount < 0 {
		errs = append(errs, fmt.Errorf("star count %d: %w", c.Scene.StarCount, starfield.ErrInvalidCount))
	}
	if r := c.Scene.StarRadius; r <= 0 || math.IsNaN(r) || r > starfield.MaxRadius {
		errs = append(errs, fmt.Errorf("star radius %v: %w", r, starfield.ErrInvalidRadius))
	}
	if c.Timing.Intro < 0 || c.Timing.Fade < 0 || c.Timing.Loading < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if math.IsNaN(c.RotationSpeed) || math.IsInf(c.RotationSpeed, 0) {
		errs = append(errs, fmt.Errorf("rotation speed %v is not finite", c.RotationSpeed))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("EXOSKY_ADDR is required"))
	}
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate limit %v req/s must be positive", rl.RequestsPerSecond))
		}
		if rl.BurstSize < 1 {
			errs = append(errs, fmt.Errorf("rate limit burst %d must be at least 1", rl.BurstSize))
		}
	}

	return errors.Join(errs...)
}

// loader reads typed values and remembers every parse failure.
type loader struct {
	file map[string]string
	err  error
}

func (l *loader) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := l.file[key]
	return v, ok
}

func (l *loader) fail(key, value string, err error) {
	l.err = errors.Join(l.err, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (l *loader) getString(key, def string) string {
	if v, ok := l.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) getInt(key string, def int) int {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return n
}

func (l *loader) getFloat(key string, def float64) float64 {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return f
}

func (l *loader) getBool(key string, def bool) bool {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return b
}

// getDuration accepts Go durations ("1500ms") or bare milliseconds ("1500").
func (l *loader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return d
}

func (l *loader) getList(key string, def []string) []string {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
