package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_KEY", "BASE_URL", "TIMEOUT", "MAX_RETRIES", "USER_AGENT", "LOG_LEVEL", "LOG_PRETTY"} {
		t.Setenv(EnvPrefix+name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, s.APIKey)
	assert.Empty(t, s.BaseURL)
	assert.Zero(t, s.Timeout)
	assert.Nil(t, s.MaxRetries)
	assert.Equal(t, "info", s.LogLevel)
	assert.False(t, s.LogPretty)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLSCREENSHOTS_API_KEY", "env-key")
	t.Setenv("ALLSCREENSHOTS_BASE_URL", "https://staging.allscreenshots.com")
	t.Setenv("ALLSCREENSHOTS_TIMEOUT", "15s")
	t.Setenv("ALLSCREENSHOTS_MAX_RETRIES", "0")
	t.Setenv("ALLSCREENSHOTS_LOG_LEVEL", "debug")
	t.Setenv("ALLSCREENSHOTS_LOG_PRETTY", "true")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "https://staging.allscreenshots.com", s.BaseURL)
	assert.Equal(t, 15*time.Second, s.Timeout)
	require.NotNil(t, s.MaxRetries)
	assert.Equal(t, 0, *s.MaxRetries)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.LogPretty)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "allscreenshots.yaml")
	content := []byte("api_key: file-key\nbase_url: https://file.example.com\ntimeout: 30s\nmax_retries: 5\nuser_agent: my-app/2.0\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("ALLSCREENSHOTS_BASE_URL", "https://env.example.com")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", s.APIKey)
	assert.Equal(t, "https://env.example.com", s.BaseURL, "environment overrides the file")
	assert.Equal(t, 30*time.Second, s.Timeout)
	require.NotNil(t, s.MaxRetries)
	assert.Equal(t, 5, *s.MaxRetries)
	assert.Equal(t, "my-app/2.0", s.UserAgent)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLSCREENSHOTS_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestAPIKeyFromEnv(t *testing.T) {
	clearEnv(t)

	key, err := APIKeyFromEnv()
	require.NoError(t, err)
	assert.Empty(t, key, "empty variable is treated as unset")

	t.Setenv(EnvAPIKey, "  sk_live_123  ")
	key, err = APIKeyFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk_live_123", key)
}
