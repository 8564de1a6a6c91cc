package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ResourceKind names a mirrored collection.
type ResourceKind string

const (
	KindPosts    ResourceKind = "posts"
	KindPages    ResourceKind = "pages"
	KindUsers    ResourceKind = "users"
	KindPlugins  ResourceKind = "plugins"
	KindThemes   ResourceKind = "themes"
	KindCourses  ResourceKind = "courses"
	KindStudents ResourceKind = "students"
	KindLessons  ResourceKind = "lessons"
	KindQuizzes  ResourceKind = "quizzes"
)

// Synchronizer mirrors the remote collections of the active site.
//
// Fetches never return errors: a failed core fetch yields an empty list and
// leaves the mirror untouched, a failed LMS endpoint moves on to the next
// strategy, ending with synthesized data. Without an active site every fetch
// returns an empty list without a request.
type Synchronizer interface {
	FetchPosts(ctx context.Context) []models.Post
	FetchPages(ctx context.Context) []models.Page
	FetchUsers(ctx context.Context) []models.User
	FetchPlugins(ctx context.Context) []models.Plugin
	FetchThemes(ctx context.Context) []models.Theme
	FetchCourses(ctx context.Context) []models.Course
	FetchStudents(ctx context.Context) []models.Student
	// FetchLessons and FetchQuizzes filter by course when courseID > 0.
	FetchLessons(ctx context.Context, courseID int) []models.Lesson
	FetchQuizzes(ctx context.Context, courseID int) []models.Quiz

	// RefreshAll fetches posts, pages, users, plugins, themes, courses and
	// students concurrently.
	RefreshAll(ctx context.Context)
	// Reset empties every mirror.
	Reset()

	Posts() []models.Post
	Pages() []models.Page
	Users() []models.User
	Plugins() []models.Plugin
	Themes() []models.Theme
	Courses() []models.Course
	Students() []models.Student
	Lessons() []models.Lesson
	Quizzes() []models.Quiz

	// IsLoading is true while at least one fetch is in flight.
	IsLoading() bool
	Loading(kind ResourceKind) bool

	ContentOverview(ctx context.Context) models.ContentOverview
	CourseStats(courseID int) models.CourseStats

	EnrollStudent(ctx context.Context, studentID, courseID int) error
	UpdateCourseProgress(ctx context.Context, studentID, courseID, percentage int) error
	CompleteCourse(ctx context.Context, studentID, courseID int) error
}

type mirrors struct {
	posts    []models.Post
	pages    []models.Page
	users    []models.User
	plugins  []models.Plugin
	themes   []models.Theme
	courses  []models.Course
	students []models.Student
	lessons  []models.Lesson
	quizzes  []models.Quiz
}

type synchronizer struct {
	api      API
	active   ActiveSiteSource
	notifier notify.Notifier
	log      logging.Logger
	rnd      Rand
	now      func() time.Time

	mu sync.RWMutex
	m  mirrors

	inFlight atomic.Int32
	loadMu   sync.Mutex
	loading  map[ResourceKind]int
}

type SyncOption func(*synchronizer)

// WithRand injects the source used for synthesized display fields.
func WithRand(r Rand) SyncOption {
	return func(s *synchronizer) { s.rnd = r }
}

// WithSyncClock overrides time.Now for synthesized and simulated records.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *synchronizer) { s.now = now }
}

func NewSynchronizer(api API, active ActiveSiteSource, n notify.Notifier, log logging.Logger, opts ...SyncOption) Synchronizer {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = logging.Discard()
	}
	s := &synchronizer{
		api:      api,
		active:   active,
		notifier: n,
		log:      log,
		rnd:      DefaultRand,
		now:      time.Now,
		loading:  make(map[ResourceKind]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind refreshes syncer whenever reg selects another site and clears it
// when the registry becomes empty.
func Bind(reg SiteRegistry, syncer Synchronizer) {
	reg.Observe(func(ctx context.Context, site *models.Site) {
		if site == nil {
			syncer.Reset()
			return
		}
		syncer.RefreshAll(ctx)
	})
}

func (s *synchronizer) begin(kind ResourceKind) func() {
	s.inFlight.Add(1)
	s.loadMu.Lock()
	s.loading[kind]++
	s.loadMu.Unlock()

	return func() {
		s.loadMu.Lock()
		s.loading[kind]--
		s.loadMu.Unlock()
		s.inFlight.Add(-1)
	}
}

func (s *synchronizer) IsLoading() bool {
	return s.inFlight.Load() > 0
}

func (s *synchronizer) Loading(kind ResourceKind) bool {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loading[kind] > 0
}

// stillActive reports whether site is still the selected one, so results of
// a fetch that outlived a site switch are dropped.
func (s *synchronizer) stillActive(site models.Site) bool {
	cur := s.active.Active()
	return cur != nil && cur.ID == site.ID
}

// fetchCore performs the single-request fetch shared by the core resources.
func fetchCore[T any](ctx context.Context, s *synchronizer, kind ResourceKind, store func(*mirrors, []T)) []T {
	site := s.active.Active()
	if site == nil {
		return []T{}
	}
	defer s.begin(kind)()

	endpoint := fmt.Sprintf("%s?per_page=%d", kind, common.DefaultPageSize)
	var out []T
	if err := s.api.Get(ctx, *site, endpoint, &out); err != nil {
		return []T{}
	}
	if out == nil {
		out = []T{}
	}

	if s.stillActive(*site) {
		s.mu.Lock()
		store(&s.m, out)
		s.mu.Unlock()
	}
	return slices.Clone(out)
}

func (s *synchronizer) FetchPosts(ctx context.Context) []models.Post {
	return fetchCore(ctx, s, KindPosts, func(m *mirrors, v []models.Post) { m.posts = v })
}

func (s *synchronizer) FetchPages(ctx context.Context) []models.Page {
	return fetchCore(ctx, s, KindPages, func(m *mirrors, v []models.Page) { m.pages = v })
}

func (s *synchronizer) FetchUsers(ctx context.Context) []models.User {
	return fetchCore(ctx, s, KindUsers, func(m *mirrors, v []models.User) { m.users = v })
}

func (s *synchronizer) FetchPlugins(ctx context.Context) []models.Plugin {
	return fetchCore(ctx, s, KindPlugins, func(m *mirrors, v []models.Plugin) { m.plugins = v })
}

func (s *synchronizer) FetchThemes(ctx context.Context) []models.Theme {
	return fetchCore(ctx, s, KindThemes, func(m *mirrors, v []models.Theme) { m.themes = v })
}

// fetchChain runs an LMS fallback chain for the active site.
func fetchChain[T any](ctx context.Context, s *synchronizer, kind ResourceKind, chain func() []strategy[T], store func(*mirrors, []T)) []T {
	site := s.active.Active()
	if site == nil {
		return []T{}
	}
	defer s.begin(kind)()

	out, source, ok := runChain(ctx, s.log, *site, chain())
	if !ok {
		return []T{}
	}
	s.log.Debug(ctx, "lms resource fetched", "kind", kind, "source", source, "count", len(out))

	if s.stillActive(*site) {
		s.mu.Lock()
		store(&s.m, out)
		s.mu.Unlock()
	}
	return slices.Clone(out)
}

func (s *synchronizer) RefreshAll(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { s.FetchPosts(ctx); return nil })
	g.Go(func() error { s.FetchPages(ctx); return nil })
	g.Go(func() error { s.FetchUsers(ctx); return nil })
	g.Go(func() error { s.FetchPlugins(ctx); return nil })
	g.Go(func() error { s.FetchThemes(ctx); return nil })
	g.Go(func() error { s.FetchCourses(ctx); return nil })
	g.Go(func() error { s.FetchStudents(ctx); return nil })
	_ = g.Wait()
}

func (s *synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = mirrors{}
}

func readMirror[T any](s *synchronizer, get func(*mirrors) []T) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(get(&s.m))
	if out == nil {
		out = []T{}
	}
	return out
}

func (s *synchronizer) Posts() []models.Post {
	return readMirror(s, func(m *mirrors) []models.Post { return m.posts })
}

func (s *synchronizer) Pages() []models.Page {
	return readMirror(s, func(m *mirrors) []models.Page { return m.pages })
}

func (s *synchronizer) Users() []models.User {
	return readMirror(s, func(m *mirrors) []models.User { return m.users })
}

func (s *synchronizer) Plugins() []models.Plugin {
	return readMirror(s, func(m *mirrors) []models.Plugin { return m.plugins })
}

func (s *synchronizer) Themes() []models.Theme {
	return readMirror(s, func(m *mirrors) []models.Theme { return m.themes })
}

func (s *synchronizer) Courses() []models.Course {
	return readMirror(s, func(m *mirrors) []models.Course { return m.courses })
}

func (s *synchronizer) Students() []models.Student {
	return readMirror(s, func(m *mirrors) []models.Student { return m.students })
}

func (s *synchronizer) Lessons() []models.Lesson {
	return readMirror(s, func(m *mirrors) []models.Lesson { return m.lessons })
}

func (s *synchronizer) Quizzes() []models.Quiz {
	return readMirror(s, func(m *mirrors) []models.Quiz { return m.quizzes })
}

// ContentOverview counts posts, pages and users from the mirrors and asks
// the site for comment, category and tag totals (0 when unavailable).
func (s *synchronizer) ContentOverview(ctx context.Context) models.ContentOverview {
	s.mu.RLock()
	ov := models.ContentOverview{
		Posts: len(s.m.posts),
		Pages: len(s.m.pages),
		Users: len(s.m.users),
	}
	s.mu.RUnlock()

	site := s.active.Active()
	if site == nil {
		return ov
	}

	var g errgroup.Group
	total := func(endpoint string, dst *int) {
		g.Go(func() error {
			if n, err := s.api.Total(ctx, *site, endpoint); err == nil {
				*dst = n
			}
			return nil
		})
	}
	total("comments", &ov.Comments)
	total("categories", &ov.Categories)
	total("tags", &ov.Tags)
	_ = g.Wait()

	return ov
}
