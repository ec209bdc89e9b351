package config

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigs(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(path.Join(dir, "public.yaml"), []byte(public), 0644))
	require.NoError(t, os.WriteFile(path.Join(dir, "private.yaml"), []byte(private), 0644))
	return dir
}

func TestMustLoad(t *testing.T) {
	dir := writeConfigs(t, `
server:
  addr: ":8080"
  allowed_origins:
    - "http://localhost:3000"
table_api: "https://tables.example.com/rest/v1"
view_mark_path: "/tmp/marks.db"
log_level: "debug"
log_json: true
max_post_len: 500
`, `
jwt_key: "secret"
table_api_key: "api-secret"
`)

	cfg := MustLoad(dir)

	assert.Equal(t, ":8080", cfg.Public.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Public.Server.AllowedOrigins)
	assert.Equal(t, "https://tables.example.com/rest/v1", cfg.Public.TableAPI)
	assert.Equal(t, "/tmp/marks.db", cfg.Public.ViewMarkPath)
	assert.Equal(t, "debug", cfg.Public.LogLevel)
	assert.True(t, cfg.Public.LogJSON)
	assert.Equal(t, 500, cfg.Public.MaxPostLen)
	assert.Equal(t, "secret", cfg.JwtKey())
	assert.Equal(t, "api-secret", cfg.TableAPIKey())
}

func TestMustLoadDefaults(t *testing.T) {
	dir := writeConfigs(t, `
server:
  addr: ":8080"
`, `
jwt_key: "secret"
`)

	cfg := MustLoad(dir)
	assert.Equal(t, 10000, cfg.Public.MaxPostLen)
	assert.Empty(t, cfg.Public.TableAPI)
}

func TestMustLoadMissingFile(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover(), "missing config must panic")
	}()
	MustLoad(t.TempDir())
}

func TestMustLoadBadYaml(t *testing.T) {
	dir := writeConfigs(t, "server: [not: valid", "jwt_key: x")
	defer func() {
		assert.NotNil(t, recover(), "malformed config must panic")
	}()
	MustLoad(dir)
}
