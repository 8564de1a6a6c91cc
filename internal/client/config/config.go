package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/filex"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// S3Config points backups at an S3-compatible bucket. An empty Bucket
// disables backups.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string `validate:"omitempty,url"`
	AccessKey    string
	SecretKey    string
}

// Config holds runtime settings for the wpk CLI.
type Config struct {
	DatabaseDSN               string        `validate:"required"`
	ConnectivityCheckInterval time.Duration `validate:"gte=0"`
	RequestTimeout            time.Duration `validate:"gt=0"`
	// RateLimit is the request budget per second for REST calls; 0 is unlimited.
	RateLimit       float64 `validate:"gte=0"`
	LogLevel        string  `validate:"oneof=debug info warn error"`
	VaultPassphrase string
	S3              S3Config
	// BackupSchedule is a standard 5-field cron expression; empty disables
	// scheduled backups.
	BackupSchedule string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "~/.wpkeeper/wpkeeper.db"
	c.ConnectivityCheckInterval = time.Minute
	c.RequestTimeout = 30 * time.Second
	c.RateLimit = 0
	c.LogLevel = "warn"
	c.S3.Region = "us-east-1"
}

// BackupsEnabled reports whether a bucket is configured.
func (c *Config) BackupsEnabled() bool {
	return c.S3.Bucket != ""
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks field ranges and the cron schedule.
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("config %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			errs = append(errs, fmt.Errorf("config BackupSchedule: %w", err))
		}
		if !c.BackupsEnabled() {
			errs = append(errs, errors.New("config BackupSchedule: set s3 bucket to enable backups"))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, the optional config file, the
// environment and args (os.Args[1:] in production). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(common.VaultPassphraseEnv); ok {
		cfg.VaultPassphrase = v
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if !strings.Contains(cfg.DatabaseDSN, "://") {
		dsn, err := filex.ExpandHome(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		cfg.DatabaseDSN = dsn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
