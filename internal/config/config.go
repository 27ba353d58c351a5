// Package config loads plancheck settings from defaults, an optional config file and
// PLANCHECK_* environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/plancheck/pkg/adapters/process"
	"github.com/aretw0/plancheck/pkg/solver"
	"github.com/aretw0/plancheck/pkg/validation"
	"github.com/aretw0/plancheck/pkg/workspace"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names an explicit config file.
const EnvConfigFile = "PLANCHECK_CONFIG"

// FileNames are probed in order in the working directory when EnvConfigFile is unset.
var FileNames = []string{"plancheck.yaml", "plancheck.yml", "plancheck.json", "plancheck.toml"}

// Store drivers.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full plancheck configuration.
type Config struct {
	Solver      process.Tool    `mapstructure:"solver"`
	Validator   ValidatorConfig `mapstructure:"validator"`
	GracePeriod time.Duration   `mapstructure:"grace_period"`
	// Workspace is the directory the solver runs in. Empty means a fresh temp dir per process.
	Workspace string      `mapstructure:"workspace"`
	Artifact  string      `mapstructure:"artifact"`
	Log       LogConfig   `mapstructure:"log"`
	Store     StoreConfig `mapstructure:"store"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// ValidatorConfig is the validator tool plus the success marker.
type ValidatorConfig struct {
	process.Tool `mapstructure:",squash"`
	Marker       string `mapstructure:"marker"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
	// Redact lists regular expressions masked in persisted logs.
	Redact []string `mapstructure:"redact"`
	// MaxLogBytes caps each persisted log, keeping its tail. Zero keeps everything.
	MaxLogBytes int `mapstructure:"max_log_bytes"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the settings of the stock planutils setup.
func Default() Config {
	return Config{
		Solver:      solver.DefaultTool(),
		Validator:   ValidatorConfig{Tool: validation.DefaultTool(), Marker: validation.DefaultMarker},
		GracePeriod: process.DefaultGracePeriod,
		Artifact:    workspace.DefaultArtifact,
		Log:         LogConfig{Level: "off"},
		Store: StoreConfig{
			Driver:      StoreNone,
			Path:        ".plancheck/runs",
			MaxLogBytes: 1 << 20,
			Redis:       RedisConfig{Addr: "localhost:6379", Prefix: "plancheck:"},
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load resolves the configuration for the current process.
func Load() (Config, error) {
	cfg := Default()

	path, err := discover()
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = LoadFile(cfg, path); err != nil {
			return cfg, err
		}
	}

	if cfg, err = ApplyEnv(cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func discover() (string, error) {
	if path, ok := os.LookupEnv(EnvConfigFile); ok && path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// LoadFile overlays the values found in path onto base. The format follows the extension.
func LoadFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".toml":
		_, err = toml.Decode(string(data), &raw)
	default:
		return base, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return base, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := decode(raw, &base); err != nil {
		return base, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return base, nil
}

// envKeys maps each PLANCHECK_* variable to its dotted config key.
var envKeys = map[string]string{
	"PLANCHECK_SOLVER_COMMAND":    "solver.command",
	"PLANCHECK_TIME_LIMIT":        "solver.time_limit",
	"PLANCHECK_VALIDATOR_COMMAND": "validator.command",
	"PLANCHECK_MARKER":            "validator.marker",
	"PLANCHECK_GRACE_PERIOD":      "grace_period",
	"PLANCHECK_WORKSPACE":         "workspace",
	"PLANCHECK_ARTIFACT":          "artifact",
	"PLANCHECK_LOG_LEVEL":         "log.level",
	"PLANCHECK_STORE":             "store.driver",
	"PLANCHECK_STORE_PATH":        "store.path",
	"PLANCHECK_MAX_LOG_BYTES":     "store.max_log_bytes",
	"PLANCHECK_REDIS_ADDR":        "store.redis.addr",
	"PLANCHECK_REDIS_PASSWORD":    "store.redis.password",
	"PLANCHECK_REDIS_DB":          "store.redis.db",
	"PLANCHECK_HTTP_ADDR":         "http.addr",
}

// ApplyEnv overlays PLANCHECK_* variables found through lookup onto base.
func ApplyEnv(base Config, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}
	for env, key := range envKeys {
		v, ok := lookup(env)
		if !ok {
			continue
		}
		setPath(raw, strings.Split(key, "."), strings.TrimSpace(v))
	}
	if len(raw) == 0 {
		return base, nil
	}
	if err := decode(raw, &base); err != nil {
		return base, fmt.Errorf("invalid environment: %w", err)
	}
	return base, nil
}

func setPath(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// secondsToDurationHook reads bare numbers as seconds, so that time_limit: 5 means 5s.
// Strings with a unit are left to StringToTimeDurationHookFunc.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
	}
	return data, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Solver.Command) == "" {
		errs = append(errs, errors.New("solver.command must not be empty"))
	}
	if strings.TrimSpace(c.Validator.Command) == "" {
		errs = append(errs, errors.New("validator.command must not be empty"))
	}
	if c.Solver.TimeLimit <= 0 {
		errs = append(errs, fmt.Errorf("solver.time_limit must be positive, got %s", c.Solver.TimeLimit))
	}
	if c.Validator.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("validator.time_limit must not be negative, got %s", c.Validator.TimeLimit))
	}
	if c.GracePeriod < 0 {
		errs = append(errs, fmt.Errorf("grace_period must not be negative, got %s", c.GracePeriod))
	}
	if c.Artifact == "" || filepath.Base(c.Artifact) != c.Artifact {
		errs = append(errs, fmt.Errorf("artifact must be a plain file name, got %q", c.Artifact))
	}
	switch c.Store.Driver {
	case StoreNone, StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.MaxLogBytes < 0 {
		errs = append(errs, fmt.Errorf("store.max_log_bytes must not be negative, got %d", c.Store.MaxLogBytes))
	}
	if c.Store.Driver == StoreRedis && c.Store.Redis.Addr == "" {
		errs = append(errs, errors.New("store.redis.addr is required by the redis driver"))
	}
	return errors.Join(errs...)
}
