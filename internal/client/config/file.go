package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/wpkeeper/internal/flagx"
	"github.com/dmitrijs2005/wpkeeper/internal/timex"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape shared by the JSON, TOML and YAML loaders.
// Zero values mean "not set" and leave the current value alone.
type fileConfig struct {
	DatabaseDSN               string         `json:"database_dsn" toml:"database_dsn" yaml:"database_dsn"`
	ConnectivityCheckInterval timex.Duration `json:"connectivity_check_interval" toml:"connectivity_check_interval" yaml:"connectivity_check_interval"`
	RequestTimeout            timex.Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
	RateLimit                 float64        `json:"rate_limit" toml:"rate_limit" yaml:"rate_limit"`
	LogLevel                  string         `json:"log_level" toml:"log_level" yaml:"log_level"`
	VaultPassphrase           string         `json:"vault_passphrase" toml:"vault_passphrase" yaml:"vault_passphrase"`
	BackupSchedule            string         `json:"backup_schedule" toml:"backup_schedule" yaml:"backup_schedule"`
	S3                        fileS3Config   `json:"s3" toml:"s3" yaml:"s3"`
}

type fileS3Config struct {
	Bucket       string `json:"bucket" toml:"bucket" yaml:"bucket"`
	Region       string `json:"region" toml:"region" yaml:"region"`
	BaseEndpoint string `json:"base_endpoint" toml:"base_endpoint" yaml:"base_endpoint"`
	AccessKey    string `json:"access_key" toml:"access_key" yaml:"access_key"`
	SecretKey    string `json:"secret_key" toml:"secret_key" yaml:"secret_key"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func decodeFile(path string, data []byte) (*fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&fc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return nil, err
		}
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	if fc.ConnectivityCheckInterval.Duration != 0 {
		cfg.ConnectivityCheckInterval = fc.ConnectivityCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RateLimit != 0 {
		cfg.RateLimit = fc.RateLimit
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.VaultPassphrase, fc.VaultPassphrase)
	setString(&cfg.BackupSchedule, fc.BackupSchedule)

	setString(&cfg.S3.Bucket, fc.S3.Bucket)
	setString(&cfg.S3.Region, fc.S3.Region)
	setString(&cfg.S3.BaseEndpoint, fc.S3.BaseEndpoint)
	setString(&cfg.S3.AccessKey, fc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, fc.S3.SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
