package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[auth]
jwt_secret = "secret"

[database]
host = "localhost"
user = "app"
password = "app"
dbname = "marketplace"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "hsm-marketplace", cfg.Metrics.ServiceName)
	assert.Equal(t, 30, cfg.Worker.PollInterval)
	assert.Equal(t, 300, cfg.Worker.ReconcileInterval)
	assert.Equal(t, 60, cfg.Worker.PendingGracePeriod)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[auth]
jwt_secret = "secret"

[database]
host = "db.internal"
port = 5433
user = "app"
password = "app"
dbname = "marketplace"
sslmode = "require"

[metrics]
enabled = true
service_name = "marketplace-prod"

[stripe]
secret_key = "sk_test_123"
webhook_secret = "whsec_123"
onboarding_return_url = "https://app.example.com/connect/return"
onboarding_refresh_url = "https://app.example.com/connect/refresh"

[onesignal]
app_id = "app-id"
rest_api_key = "rest-key"

[worker]
poll_interval = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "marketplace-prod", cfg.Metrics.ServiceName)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "https://app.example.com/connect/return", cfg.Stripe.OnboardingReturnURL)
	assert.Equal(t, 5, cfg.Worker.PollInterval)

	assert.Equal(t,
		"host=db.internal port=5433 user=app password=app dbname=marketplace sslmode=require",
		cfg.Database.DSN(),
	)
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		path := writeConfig(t, `
[database]
host = "localhost"
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt_secret")
	})

	t.Run("missing database host", func(t *testing.T) {
		path := writeConfig(t, `
[auth]
jwt_secret = "secret"
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.host")
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
