package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "~/.wpkeeper/wpkeeper.db", c.DatabaseDSN)
	assert.Equal(t, time.Minute, c.ConnectivityCheckInterval)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.False(t, c.BackupsEnabled())
	require.NoError(t, c.Validate())
}

func TestLoadConfig_DefaultsExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv(common.VaultPassphraseEnv, "")
	os.Unsetenv(common.VaultPassphraseEnv)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".wpkeeper/wpkeeper.db"), cfg.DatabaseDSN)
	assert.Empty(t, cfg.VaultPassphrase)
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := LoadConfig([]string{"-d", "postgres://u:p@db/wp", "-i", "10", "-l", "debug", "-t", "5", "-unknown", "x"})
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/wp", cfg.DatabaseDSN)
	assert.Equal(t, 10*time.Second, cfg.ConnectivityCheckInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_BadFlagValue(t *testing.T) {
	_, err := LoadConfig([]string{"-i", "abc"})
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	_, err := LoadConfig([]string{"-l", "verbose"})
	assert.ErrorContains(t, err, "LogLevel")

	_, err = LoadConfig([]string{"-t", "0"})
	assert.ErrorContains(t, err, "RequestTimeout")
}

func TestLoadConfig_EnvPassphrase(t *testing.T) {
	t.Setenv(common.VaultPassphraseEnv, "s3cret")

	cfg, err := LoadConfig([]string{"-d", "x.db"})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.VaultPassphrase)
}

func TestLoadConfig_FileFormats(t *testing.T) {
	want := Config{
		DatabaseDSN:               "/var/lib/wpk/registry.db",
		ConnectivityCheckInterval: 90 * time.Second,
		RequestTimeout:            10 * time.Second,
		RateLimit:                 2.5,
		LogLevel:                  "info",
		BackupSchedule:            "0 3 * * *",
		S3: S3Config{
			Bucket:       "wp-backups",
			Region:       "eu-west-1",
			BaseEndpoint: "http://127.0.0.1:9000",
			AccessKey:    "minio",
			SecretKey:    "minio123",
		},
	}

	files := map[string]string{
		"cfg.json": `{
  "database_dsn": "/var/lib/wpk/registry.db",
  "connectivity_check_interval": "90s",
  "request_timeout": 10000000000,
  "rate_limit": 2.5,
  "log_level": "info",
  "backup_schedule": "0 3 * * *",
  "s3": {"bucket": "wp-backups", "region": "eu-west-1", "base_endpoint": "http://127.0.0.1:9000", "access_key": "minio", "secret_key": "minio123"}
}`,
		"cfg.toml": `
database_dsn = "/var/lib/wpk/registry.db"
connectivity_check_interval = "90s"
request_timeout = "10s"
rate_limit = 2.5
log_level = "info"
backup_schedule = "0 3 * * *"

[s3]
bucket = "wp-backups"
region = "eu-west-1"
base_endpoint = "http://127.0.0.1:9000"
access_key = "minio"
secret_key = "minio123"
`,
		"cfg.yaml": `
database_dsn: /var/lib/wpk/registry.db
connectivity_check_interval: 90s
request_timeout: 10s
rate_limit: 2.5
log_level: info
backup_schedule: "0 3 * * *"
s3:
  bucket: wp-backups
  region: eu-west-1
  base_endpoint: http://127.0.0.1:9000
  access_key: minio
  secret_key: minio123
`,
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, body)

			cfg, err := LoadConfig([]string{"-config", path})
			require.NoError(t, err)
			cfg.VaultPassphrase = ""
			if diff := cmp.Diff(want, *cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"database_dsn": "from-file.db", "log_level": "error"}`)

	cfg, err := LoadConfig([]string{"-c", path, "-d", "from-flag.db"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DatabaseDSN)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorContains(t, err, "read config file")

	bad := writeFile(t, "bad.json", `{ this is not valid json`)
	_, err = LoadConfig([]string{"-c", bad})
	assert.ErrorContains(t, err, "decode config file")

	unknown := writeFile(t, "unknown.yaml", "server_endpoint_addr: 127.0.0.1:50051\n")
	_, err = LoadConfig([]string{"-c", unknown})
	assert.Error(t, err)
}

func TestValidate_Schedule(t *testing.T) {
	var c Config
	c.LoadDefaults()

	c.BackupSchedule = "every day"
	c.S3.Bucket = "b"
	assert.ErrorContains(t, c.Validate(), "BackupSchedule")

	c.BackupSchedule = "@daily"
	assert.NoError(t, c.Validate())

	c.S3.Bucket = ""
	assert.ErrorContains(t, c.Validate(), "s3 bucket")
}
