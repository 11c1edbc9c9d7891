package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
gin:
  mode: test
api:
  environment: test
  port: "9000"
  jwt_signing_key: secret
log:
  level: info
database:
  driver: sqlite
sqlite:
  path: ":memory:"
cart:
  backend: memory
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", conf.API.Port)
	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, "kasse_session", conf.API.SessionCookie)
	assert.Equal(t, 12*time.Hour, conf.API.JWTTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	t.Setenv("KASSE_API_PORT", "9100")
	t.Setenv("KASSE_LOG_LEVEL", "debug")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", conf.API.Port)
	assert.Equal(t, "debug", conf.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{
			name: "unknown driver",
			body: baseConfig,
			env:  map[string]string{"KASSE_DATABASE_DRIVER": "oracle"},
		},
		{
			name: "redis backend without address",
			body: `
gin:
  mode: test
api:
  port: "9000"
cart:
  backend: redis
`,
		},
		{
			name: "missing api",
			body: `
gin:
  mode: test
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.body)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadAndWatch(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)

	changes := make(chan *AppConfig, 4)
	conf, err := LoadAndWatch(path, func(c *AppConfig) { changes <- c })
	require.NoError(t, err)
	assert.Equal(t, "info", conf.Log.Level)

	updated := strings.Replace(baseConfig, "level: info", "level: warn", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	select {
	case c := <-changes:
		assert.Equal(t, "warn", c.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
