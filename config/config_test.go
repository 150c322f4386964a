package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/config"
)

func TestLoad_FileOverridesDefaultsEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frontdesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[pms]
base_url = "https://pms.example.com"
timeout_seconds = 5

[desk]
refresh_seconds = 10
`), 0o600))

	t.Setenv("FRONTDESK_PMS_TOKEN", "secret")
	t.Setenv("FRONTDESK_PORT", "9100")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port) // env beats file
	assert.Equal(t, "https://pms.example.com", cfg.PMS.BaseURL)
	assert.Equal(t, "secret", cfg.PMS.Token)
	assert.Equal(t, 5*time.Second, cfg.PMS.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Desk.RefreshInterval())
	// untouched sections keep their defaults
	assert.Equal(t, "frontdesk.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Desk.CascadeDelay())
}

func TestLoad_MissingTokenFails(t *testing.T) {
	t.Setenv("FRONTDESK_PMS_TOKEN", "")
	t.Setenv("FRONTDESK_PMS_BASE_URL", "https://pms.example.com")

	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrMissingToken)
}
