package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/logging"
)

// ConnectivityWatcher periodically probes the active site and records the
// result in the registry.
type ConnectivityWatcher struct {
	reg      SiteRegistry
	tester   ConnectionTester
	interval time.Duration
	log      logging.Logger
}

// NewConnectivityWatcher returns a watcher. An interval of 0 disables it.
func NewConnectivityWatcher(reg SiteRegistry, tester ConnectionTester, interval time.Duration, log logging.Logger) *ConnectivityWatcher {
	if log == nil {
		log = logging.Discard()
	}
	return &ConnectivityWatcher{reg: reg, tester: tester, interval: interval, log: log}
}

// Run blocks until ctx is cancelled.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Probe(ctx)
		}
	}
}

// Probe checks the active site once.
func (w *ConnectivityWatcher) Probe(ctx context.Context) {
	site := w.reg.Active()
	if site == nil {
		return
	}
	ok := w.tester.TestConnection(ctx, site.Credentials())
	if !ok {
		w.log.Warn(ctx, "site unreachable", "site", site.Name)
	}
	w.reg.MarkConnectivity(ctx, site.ID, ok)
}
