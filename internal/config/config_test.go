package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/stdatmo/internal/atmosphere"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, atmosphere.DefaultFloorM, cfg.Model.FloorM())
	assert.InDelta(t, 86000.0, cfg.Model.WarnAboveCeilingM, 1200)
	assert.Equal(t, -1000.0, cfg.Profile.FromM)
	assert.Equal(t, 86900.0, cfg.Profile.ToM)
	assert.Equal(t, 100.0, cfg.Profile.StepM)
	assert.Equal(t, 10000, cfg.Profile.MaxSamples)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10, cfg.WebSocket.WriteTimeoutSecs)

	n, err := cfg.Limits().Check(cfg.Profile.FromM, cfg.Profile.ToM, cfg.Profile.StepM)
	require.NoError(t, err)
	assert.Equal(t, 880, n)
}

func TestLoad_RepositoryConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Model.ValidateTableOnStart)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, -5000.0, cfg.Model.FloorM())
}

func TestLoad_ExplicitZeroFloor(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\nport = 80\n[model]\nmin_altitude_m = 0.0\n[profile]\nfrom_m = 0.0\nto_m = 1000.0\nstep_m = 10.0\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.0, cfg.Model.FloorM())
	assert.Equal(t, 0.0, cfg.Limits().FloorM)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = Load(writeConfig(t, "[server\nport = 1"))
	assert.ErrorContains(t, err, "failed to decode")

	_, err = Load(writeConfig(t, "[server]\nport = 1\nbogus = true\n"))
	assert.ErrorContains(t, err, "server.bogus")
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad port":         "[server]\nport = 70000\n",
		"duplicate port":   "[server]\nport = 8080\nadditional_ports = [8080]\n",
		"bad level":        "[server]\nport = 8080\n[logging]\nlevel = \"trace\"\n",
		"bad format":       "[server]\nport = 8080\n[logging]\nformat = \"xml\"\n",
		"positive floor":   "[server]\nport = 8080\n[model]\nmin_altitude_m = 100.0\n",
		"from below floor": "[server]\nport = 8080\n[profile]\nfrom_m = -9000.0\nto_m = 0.0\nstep_m = 100.0\n",
		"bad step":         "[server]\nport = 8080\n[profile]\nfrom_m = 0.0\nto_m = 100.0\nstep_m = -1.0\n",
		"too many":         "[server]\nport = 8080\n[profile]\nfrom_m = 0.0\nto_m = 100000.0\nstep_m = 1.0\nmax_samples = 10\n",
		"metrics path":     "[server]\nport = 8080\n[metrics]\npath = \"metrics\"\n",
		"ws interval":      "[server]\nport = 8080\n[websocket]\nsample_interval_ms = -5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithFallback(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 7000\n")
	cfg, err := LoadWithFallback(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	_, err = LoadWithFallback("")
	assert.ErrorContains(t, err, "expected locations")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 10000, cfg.Limits().MaxSamples)
}
