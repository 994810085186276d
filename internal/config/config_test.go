package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 20, cfg.DelaySeconds)
	assert.Equal(t, 20*time.Second, cfg.Delay())
	assert.Equal(t, 10, cfg.HistoryCap)
	assert.Equal(t, ".secret", cfg.SecretsDir)
	assert.Equal(t, "default", cfg.User)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgstatus.yaml")
	data := "delay_seconds: 5\n" +
		"history_cap: 25\n" +
		"user: alt\n" +
		"skip:\n  - banned\n  - deleted\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DelaySeconds)
	assert.Equal(t, 25, cfg.HistoryCap)
	assert.Equal(t, "alt", cfg.User)
	assert.Equal(t, []string{"banned", "deleted"}, cfg.Skip)
	// Untouched fields keep their defaults.
	assert.Equal(t, ".secret", cfg.SecretsDir)
}

func TestLoadRejectsNegativeDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgstatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delay_seconds: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgstatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delay_seconds: [not an int\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alt.token"), []byte("  123:abc \n"), 0o600))

	cfg := Default()
	cfg.SecretsDir = dir
	cfg.User = "alt"

	assert.Equal(t, filepath.Join(dir, "alt.token"), cfg.TokenPath())
	token, err := cfg.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)
}

func TestReadTokenMissing(t *testing.T) {
	cfg := Default()
	cfg.SecretsDir = t.TempDir()

	_, err := cfg.ReadToken()
	assert.Error(t, err)
}
