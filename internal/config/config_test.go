package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b97tsk/wake/internal/config"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	type testCase struct {
		description string
		name        string
		data        string
		expected    config.Config
	}

	want := config.Default()
	want.Executor.TaskCapacity = 8
	want.Executor.QueueCapacity = 4
	want.Heap.Size = 512
	want.SysTick.Period = "1s"
	want.Log.Level = "debug"

	cases := []testCase{
		{
			description: "toml",
			name:        "wakesim.toml",
			data: `
[executor]
task_capacity = 8
queue_capacity = 4

[heap]
size = 512

[systick]
period = "1s"

[log]
level = "debug"
`,
			expected: want,
		},
		{
			description: "yaml",
			name:        "wakesim.yaml",
			data: `
executor:
  task_capacity: 8
  queue_capacity: 4
heap:
  size: 512
systick:
  period: 1s
log:
  level: debug
`,
			expected: want,
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tc.name, tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)

			d, err := cfg.Period()
			require.NoError(t, err)
			assert.Equal(t, time.Second, d)

			l, err := cfg.Level()
			require.NoError(t, err)
			assert.Equal(t, slog.LevelDebug, l)

			ec := cfg.ExecutorConfig()
			assert.Equal(t, 8, ec.TaskCapacity)
			assert.Equal(t, 4, ec.QueueCapacity)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(10), cfg.Ticks())
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		description string
		name        string
		data        string
		contains    string
	}{
		{description: "unknown format", name: "a.json", data: "{}", contains: "unsupported config format"},
		{description: "bad toml", name: "a.toml", data: "[executor", contains: "failed to parse TOML"},
		{description: "bad yaml", name: "a.yaml", data: "executor: [", contains: "failed to parse YAML"},
		{description: "zero capacity", name: "a.toml", data: "[executor]\ntask_capacity = 0", contains: "task_capacity must be positive"},
		{description: "huge capacity", name: "a.toml", data: "[executor]\ntask_capacity = 8589934592", contains: "executor.task_capacity"},
		{description: "capacity above maximum", name: "a.toml", data: "[executor]\ntask_capacity = 65537", contains: "must not exceed 65536"},
		{description: "bad period", name: "a.yml", data: "systick:\n  period: soon", contains: "systick.period"},
		{description: "bad level", name: "a.toml", data: "[log]\nlevel = \"loud\"", contains: "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tc.name, tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}
