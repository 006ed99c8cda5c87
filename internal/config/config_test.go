package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("NOTES_TEST_SET", "from-env")

	assert.Equal(t, "from-env", expandEnvWithDefaults("${NOTES_TEST_SET:-fallback}"))
	assert.Equal(t, "fallback", expandEnvWithDefaults("${NOTES_TEST_UNSET:-fallback}"))
	assert.Equal(t, "", expandEnvWithDefaults("${NOTES_TEST_UNSET}"))
	assert.Equal(t, "mongodb://from-env:27017", expandEnvWithDefaults("mongodb://${NOTES_TEST_SET}:27017"))
	assert.Equal(t, "plain", expandEnvWithDefaults("plain"))
}

func TestInitConfig_TypedEnvValues(t *testing.T) {
	t.Setenv("NOTES_HTTP_PORT", "9090")
	t.Setenv("NOTES_AUTH", "true")

	path := writeFile(t, "config.yml", `
server:
  port_http: ${NOTES_HTTP_PORT:-8080}
auth:
  enabled: ${NOTES_AUTH:-false}
  jwt_secret: secret
storage:
  driver: ${NOTES_DRIVER:-memory}
`)

	cfg, err := InitConfig[Config](path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.PortHTTP)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestInitConfig_MissingFile(t *testing.T) {
	_, err := InitConfig[Config](filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.yml", "logger:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, 8080, cfg.Server.PortHTTP)
	assert.Equal(t, 50051, cfg.Server.PortGRPC)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Swagger.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "unknown storage driver"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Storage.Driver = StorageMongo }, wantErr: "mongo_uri"},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.Storage.Driver = StorageSQLite }, wantErr: "sql_dsn"},
		{name: "auth without secret", mutate: func(c *Config) { c.Auth.Enabled = true }, wantErr: "jwt_secret"},
		{
			name: "mongo with uri",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageMongo
				c.Storage.MongoURI = "mongodb://localhost:27017"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "NOTES_DOTENV_VALUE=loaded\n")
	t.Setenv("NOTES_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("NOTES_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("NOTES_DOTENV_VALUE"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")), "missing .env is not an error")
}
