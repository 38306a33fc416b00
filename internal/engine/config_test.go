package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigLayersYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
seed: 99
port: "9000"
tick_rate: 20
levels_dir: ./levels
sim:
  bite_damage: 5
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("ISO_PORT", "7777")
	t.Setenv("ISO_SEED", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "7777", cfg.Port, "env wins over file")
	assert.Equal(t, 20, cfg.TickRate)
	assert.Equal(t, "./levels", cfg.LevelsDir)
	assert.Equal(t, 5, cfg.Sim.BiteDamage)
	assert.Equal(t, DefaultSimConfig().WolfSpeed, cfg.Sim.WolfSpeed, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())
	assert.InDelta(t, 0.05, cfg.TickDelta(), 1e-12)
}

func TestApplyEnvRejectsBadSeed(t *testing.T) {
	cfg := NewConfig()
	lookup := func(key string) (string, bool) {
		if key == "ISO_SEED" {
			return "not-a-number", true
		}
		return "", false
	}
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.TickRate = 0
	cfg.Bots = -1
	cfg.Sim.BiteDuration = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), "bots")
	assert.Contains(t, err.Error(), "bite_duration")

	assert.NoError(t, NewConfig().Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	for _, key := range []string{"ISO_PORT", "ISO_SEED", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "levels", cfg.LevelsDir)
	assert.Equal(t, DefaultSimConfig(), cfg.Sim)
}
