package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"github.com/google/uuid"
)

// ActiveSiteListener is called after the active site changes. site is nil
// when the registry became empty.
type ActiveSiteListener func(ctx context.Context, site *models.Site)

// SiteRegistry owns the connected sites and the active-site selection.
//
// Contract:
//   - the active site is nil iff the registry is empty;
//   - ConnectSite appends a verified site and makes it active;
//   - DisconnectSite of the active site selects the first remaining one;
//   - SwitchSite to an unknown id changes nothing.
type SiteRegistry interface {
	ConnectSite(ctx context.Context, c models.Credentials) bool
	DisconnectSite(ctx context.Context, id string) bool
	SwitchSite(ctx context.Context, id string) bool
	Sites() []models.Site
	Active() *models.Site
	IsConnecting() bool
	Observe(l ActiveSiteListener)
	MarkConnectivity(ctx context.Context, id string, ok bool)
}

type siteRegistry struct {
	store    SiteStore
	tester   ConnectionTester
	notifier notify.Notifier
	log      logging.Logger

	now   func() time.Time
	newID func() string

	// saveMu orders Save calls; each takes its snapshot while holding it.
	saveMu sync.Mutex

	mu        sync.RWMutex
	sites     []models.Site
	activeID  string
	listeners []ActiveSiteListener

	connecting atomic.Int32
}

type RegistryOption func(*siteRegistry)

// WithClock overrides time.Now for connection timestamps.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *siteRegistry) { r.now = now }
}

// WithIDGenerator overrides uuid.NewString for new site ids.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *siteRegistry) { r.newID = gen }
}

// NewSiteRegistry loads the stored sites and selects the first one.
func NewSiteRegistry(ctx context.Context, store SiteStore, tester ConnectionTester, n notify.Notifier, log logging.Logger, opts ...RegistryOption) SiteRegistry {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = logging.Discard()
	}
	r := &siteRegistry{
		store:    store,
		tester:   tester,
		notifier: n,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.sites = store.Load(ctx)
	if len(r.sites) > 0 {
		r.activeID = r.sites[0].ID
	}
	return r
}

func (r *siteRegistry) ConnectSite(ctx context.Context, c models.Credentials) bool {
	r.connecting.Add(1)
	defer r.connecting.Add(-1)

	if !r.tester.TestConnection(ctx, c) {
		r.notifier.Notify(ctx, notify.Notification{
			Title:       "Connection Failed",
			Description: "Could not connect to WordPress site. Please check your credentials.",
			Severity:    notify.SeverityDestructive,
		})
		return false
	}

	site, err := models.NewSite(r.newID(), c, r.now().Round(0).UTC())
	if err != nil {
		r.log.Error(ctx, "error connecting site", "url", c.URL, "error", err)
		r.notifier.Notify(ctx, notify.Notification{
			Title:       "Connection Error",
			Description: "An unexpected error occurred while connecting to the site.",
			Severity:    notify.SeverityDestructive,
		})
		return false
	}

	r.mu.Lock()
	r.sites = append(r.sites, site)
	r.activeID = site.ID
	r.mu.Unlock()

	r.persist(ctx)
	r.log.Info(ctx, "site connected", "site", site.Name, "auth", site.AuthType)
	r.notifier.Notify(ctx, notify.Notification{
		Title:       "Site Connected",
		Description: "Successfully connected to " + site.Name,
	})
	r.fire(ctx, &site)
	return true
}

// DisconnectSite removes id and reports whether it was present.
func (r *siteRegistry) DisconnectSite(ctx context.Context, id string) bool {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}

	removed := r.sites[idx]
	r.sites = append(r.sites[:idx:idx], r.sites[idx+1:]...)

	activeChanged := r.activeID == id
	var next *models.Site
	if activeChanged {
		r.activeID = ""
		if len(r.sites) > 0 {
			r.activeID = r.sites[0].ID
			s := r.sites[0]
			next = &s
		}
	}
	r.mu.Unlock()

	r.persist(ctx)
	r.log.Info(ctx, "site disconnected", "site", removed.Name)
	r.notifier.Notify(ctx, notify.Notification{
		Title:       "Site Disconnected",
		Description: "The site has been removed from your dashboard.",
	})
	if activeChanged {
		r.fire(ctx, next)
	}
	return true
}

// SwitchSite activates id. Unknown ids are ignored.
func (r *siteRegistry) SwitchSite(ctx context.Context, id string) bool {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	changed := r.activeID != id
	r.activeID = id
	s := r.sites[idx]
	r.mu.Unlock()

	if changed {
		r.fire(ctx, &s)
	}
	return true
}

func (r *siteRegistry) Sites() []models.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Active returns a copy of the active site, or nil.
func (r *siteRegistry) Active() *models.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(r.activeID)
	if idx < 0 {
		return nil
	}
	s := r.sites[idx]
	return &s
}

func (r *siteRegistry) IsConnecting() bool {
	return r.connecting.Load() > 0
}

func (r *siteRegistry) Observe(l ActiveSiteListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// MarkConnectivity records the outcome of a connectivity probe.
func (r *siteRegistry) MarkConnectivity(ctx context.Context, id string, ok bool) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	s := &r.sites[idx]
	if !ok && !s.IsConnected {
		r.mu.Unlock()
		return
	}
	s.IsConnected = ok
	if ok {
		at := r.now().Round(0).UTC()
		s.LastConnected = &at
	}
	r.mu.Unlock()

	r.persist(ctx)
}

func (r *siteRegistry) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.sites {
		if r.sites[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *siteRegistry) snapshotLocked() []models.Site {
	out := make([]models.Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// persist saves the registry as it is when the previous save has finished,
// so a slow save never overwrites a newer one.
func (r *siteRegistry) persist(ctx context.Context) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.RLock()
	sites := r.snapshotLocked()
	r.mu.RUnlock()

	if err := r.store.Save(ctx, sites); err != nil {
		r.log.Error(ctx, "failed to persist site registry", "error", err)
	}
}

func (r *siteRegistry) fire(ctx context.Context, site *models.Site) {
	r.mu.RLock()
	ls := make([]ActiveSiteListener, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.RUnlock()

	for _, l := range ls {
		l(ctx, site)
	}
}
