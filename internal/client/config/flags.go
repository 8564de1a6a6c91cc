package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags this package owns. Other flags in
// args are ignored (see flagx.FilterArgs).
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-i", "-l", "-t"})

	fs := flag.NewFlagSet("wpk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "registry database DSN")
	interval := fs.Int("i", int(cfg.ConnectivityCheckInterval.Seconds()), "connectivity check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.ConnectivityCheckInterval = time.Duration(*interval) * time.Second
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
