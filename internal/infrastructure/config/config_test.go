package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := inEmptyDir(t)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "hotelier-console", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.App.SessionIdleTimeout)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "inline", cfg.Storage.Driver)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AI.Model)
	assert.Equal(t, 1200*time.Millisecond, cfg.Auth.SendCodeDelay)
	assert.Equal(t, 1000*time.Millisecond, cfg.Auth.VerifyDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Auth.RedirectDelay)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileEnvAndDotenv(t *testing.T) {
	dir := inEmptyDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[app]
port = "9090"

[database]
driver = "sqlite"

[ai]
model = "from-file"
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HOTELIER_AI_API_KEY=from-dotenv\n"), 0o600))
	t.Setenv("HOTELIER_AI_MODEL", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("HOTELIER_AI_API_KEY") })

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "hotelier.db", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.AI.Model)
	assert.Equal(t, "from-dotenv", cfg.AI.APIKey)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"unknown database driver", map[string]string{"HOTELIER_DATABASE_DRIVER": "mongo"}, "database.driver"},
		{"postgres without dsn", map[string]string{"HOTELIER_DATABASE_DRIVER": "postgres"}, "database.dsn"},
		{"s3 without bucket", map[string]string{"HOTELIER_STORAGE_DRIVER": "s3"}, "storage.bucket"},
		{"unknown storage driver", map[string]string{"HOTELIER_STORAGE_DRIVER": "ftp"}, "storage.driver"},
		{"short production secret", map[string]string{"HOTELIER_APP_ENV": "production", "HOTELIER_AUTH_JWT_SECRET": "short"}, "jwt_secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := inEmptyDir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
