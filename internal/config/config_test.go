package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "planutils", cfg.Solver.Command)
	assert.Equal(t, []string{"run", "dual-bfws-ffparser", "{domain}", "{problem}"}, cfg.Solver.Args)
	assert.Equal(t, 5*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, []string{"run", "val", "Validate", "{domain}", "{problem}", "{plan}"}, cfg.Validator.Args)
	assert.Zero(t, cfg.Validator.TimeLimit)
	assert.Equal(t, "Plan valid", cfg.Validator.Marker)
	assert.Equal(t, 3*time.Second, cfg.GracePeriod)
	assert.Equal(t, "plan", cfg.Artifact)
	assert.Equal(t, StoreNone, cfg.Store.Driver, "persistence is opt-in")
}

func TestLoadFile_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"plancheck.yaml": `
solver:
  time_limit: 10s
grace_period: 1
validator:
  marker: "Plan OK"
store:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
`,
		"plancheck.json": `{
  "solver": {"time_limit": "10s"},
  "grace_period": 1,
  "validator": {"marker": "Plan OK"},
  "store": {"driver": "redis", "redis": {"addr": "cache:6379", "db": 2}}
}`,
		"plancheck.toml": `
grace_period = 1

[solver]
time_limit = "10s"

[validator]
marker = "Plan OK"

[store]
driver = "redis"

[store.redis]
addr = "cache:6379"
db = 2
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFile(Default(), writeFile(t, dir, name, content))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, 10*time.Second, cfg.Solver.TimeLimit)
			assert.Equal(t, "planutils", cfg.Solver.Command, "unset keys keep their defaults")
			assert.Len(t, cfg.Solver.Args, 4)
			assert.Equal(t, time.Second, cfg.GracePeriod)
			assert.Equal(t, "Plan OK", cfg.Validator.Marker)
			assert.Equal(t, "planutils", cfg.Validator.Command)
			assert.Equal(t, StoreRedis, cfg.Store.Driver)
			assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
			assert.Equal(t, 2, cfg.Store.Redis.DB)
			assert.Equal(t, "plancheck:", cfg.Store.Redis.Prefix)
		})
	}
}

func TestLoadFile_Redact(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "store:\n  redact:\n    - 'token=\\S+'\n")
	cfg, err := LoadFile(Default(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{`token=\S+`}, cfg.Store.Redact)
}

func TestLoadFile_ArgsAreReplaced(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "solver:\n  command: ./solve.sh\n  args: [\"{domain}\"]\n")
	cfg, err := LoadFile(Default(), path)
	require.NoError(t, err)
	assert.Equal(t, "./solve.sh", cfg.Solver.Command)
	assert.Equal(t, []string{"{domain}"}, cfg.Solver.Args)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(Default(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(Default(), writeFile(t, dir, "c.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = LoadFile(Default(), writeFile(t, dir, "bad.yaml", "solver: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFile(Default(), writeFile(t, dir, "unknown.yaml", "solvr:\n  command: x\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = LoadFile(Default(), writeFile(t, dir, "duration.yaml", "grace_period: soon\n"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PLANCHECK_TIME_LIMIT":   "2.5",
		"PLANCHECK_GRACE_PERIOD": "500ms",
		"PLANCHECK_STORE":        "memory",
		"PLANCHECK_REDIS_DB":     "3",
		"PLANCHECK_MARKER":       "VALID",
		"PLANCHECK_LOG_LEVEL":    "debug",
		"PLANCHECK_MAX_LOG_BYTES": "4096",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := ApplyEnv(Default(), lookup)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Solver.TimeLimit)
	assert.Equal(t, "planutils", cfg.Solver.Command)
	assert.Equal(t, 500*time.Millisecond, cfg.GracePeriod)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "VALID", cfg.Validator.Marker)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4096, cfg.Store.MaxLogBytes)
}

func TestApplyEnv_NothingSet(t *testing.T) {
	cfg, err := ApplyEnv(Default(), noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, "plancheck.yaml", "solver:\n  time_limit: 7s\ngrace_period: 2s\n")
	t.Setenv("PLANCHECK_GRACE_PERIOD", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Solver.TimeLimit, "file overrides default")
	assert.Equal(t, time.Second, cfg.GracePeriod, "env overrides file")
}

func TestLoad_ExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, t.TempDir(), "custom.toml", "artifact = \"sas_plan\"\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sas_plan", cfg.Artifact)

	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty solver", func(c *Config) { c.Solver.Command = " " }},
		{"empty validator", func(c *Config) { c.Validator.Command = "" }},
		{"zero time limit", func(c *Config) { c.Solver.TimeLimit = 0 }},
		{"negative grace", func(c *Config) { c.GracePeriod = -time.Second }},
		{"negative validator limit", func(c *Config) { c.Validator.TimeLimit = -1 }},
		{"artifact path", func(c *Config) { c.Artifact = "../plan" }},
		{"negative log cap", func(c *Config) { c.Store.MaxLogBytes = -1 }},
		{"unknown store", func(c *Config) { c.Store.Driver = "postgres" }},
		{"redis without addr", func(c *Config) { c.Store.Driver = StoreRedis; c.Store.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
