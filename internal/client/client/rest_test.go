package client

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCMS struct {
	srv   *httptest.Server
	hits  atomic.Int32
	auth  atomic.Value
	query atomic.Value
}

func newFakeCMS(t *testing.T) *fakeCMS {
	t.Helper()
	f := &fakeCMS{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.hits.Add(1)
			f.auth.Store(r.Header.Get("Authorization"))
			f.query.Store(r.URL.RawQuery)
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/wp-json/wp/v2", func(r chi.Router) {
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-WP-Total", "12")
			_, _ = io.WriteString(w, `[{"id":1,"title":{"rendered":"Hello"},"categories":[1]}]`)
		})
		r.Get("/users/me", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":1,"name":"admin"}`)
		})
		r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		})
		r.Get("/forbidden", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"code":"rest_forbidden"}`, http.StatusForbidden)
		})
		r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
			_, _ = w.Write(b)
		})
	})
	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCMS) site() models.Site {
	return models.Site{
		ID:                  "s1",
		URL:                 f.srv.URL + "/",
		Username:            "admin",
		ApplicationPassword: "pass word",
		AuthType:            models.AuthApplicationPassword,
	}
}

func TestRestClient_GetDecodesAndAuthenticates(t *testing.T) {
	f := newFakeCMS(t)
	rec := &notify.Recorder{}
	c := NewRestClient(WithNotifier(rec))

	var posts []models.Post
	require.NoError(t, c.Get(context.Background(), f.site(), "posts?per_page=100", &posts))

	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title.String())
	assert.Equal(t, "per_page=100", f.query.Load())
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:pass word"))
	assert.Equal(t, want, f.auth.Load())
	assert.Empty(t, rec.All())
}

func TestRestClient_JWTWithoutTokenSendsNoAuthorization(t *testing.T) {
	f := newFakeCMS(t)
	c := NewRestClient()

	s := models.Site{URL: f.srv.URL, AuthType: models.AuthJWT}
	require.NoError(t, c.Get(context.Background(), s, "users/me", nil))
	assert.Equal(t, "", f.auth.Load())
}

func TestRestClient_NonSuccessStatus(t *testing.T) {
	f := newFakeCMS(t)
	rec := &notify.Recorder{}
	c := NewRestClient(WithNotifier(rec))
	ctx := context.Background()

	err := c.Get(ctx, f.site(), "forbidden", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rest_forbidden")
	assert.Equal(t, "forbidden", apiErr.Endpoint)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = c.Get(ctx, f.site(), "nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	err = c.Get(ctx, f.site(), "boom", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "API request failed: 500")

	all := rec.All()
	require.Len(t, all, 3)
	for _, n := range all {
		assert.Equal(t, APIErrorTitle, n.Title)
		assert.Equal(t, notify.SeverityDestructive, n.Severity)
	}
}

func TestRestClient_DecodeFailureIsNotified(t *testing.T) {
	f := newFakeCMS(t)
	rec := &notify.Recorder{}
	c := NewRestClient(WithNotifier(rec))

	var out []models.Post
	err := c.Get(context.Background(), f.site(), "broken", &out)
	require.Error(t, err)
	assert.Equal(t, []string{APIErrorTitle}, rec.Titles())
}

func TestRestClient_TransportFailure(t *testing.T) {
	f := newFakeCMS(t)
	s := f.site()
	f.srv.Close()

	rec := &notify.Recorder{}
	c := NewRestClient(WithNotifier(rec))

	err := c.Get(context.Background(), s, "posts", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, rec.All(), 1)
}

func TestRestClient_ExactlyOneRoundTrip(t *testing.T) {
	f := newFakeCMS(t)
	c := NewRestClient()

	_ = c.Get(context.Background(), f.site(), "boom", nil)
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestRestClient_PostsJSONBody(t *testing.T) {
	f := newFakeCMS(t)
	c := NewRestClient()

	in := map[string]int{"student_id": 3, "course_id": 7}
	var out map[string]int
	require.NoError(t, c.Request(context.Background(), f.site(), http.MethodPost, "echo", in, &out))
	assert.Equal(t, in, out)
}

func TestRestClient_Total(t *testing.T) {
	f := newFakeCMS(t)
	rec := &notify.Recorder{}
	c := NewRestClient(WithNotifier(rec))
	ctx := context.Background()

	n, err := c.Total(ctx, f.site(), "posts")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "per_page=1", f.query.Load())

	_, err = c.Total(ctx, f.site(), "users/me")
	assert.Error(t, err)

	_, err = c.Total(ctx, f.site(), "boom")
	assert.Error(t, err)
	assert.Empty(t, rec.All())
}

func TestRestClient_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	c := NewRestClient(WithTimeout(50 * time.Millisecond))
	err := c.Get(context.Background(), models.Site{URL: slow.URL}, "posts", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRestClient_RateLimitHonorsContext(t *testing.T) {
	f := newFakeCMS(t)
	c := NewRestClient(WithRateLimit(0.001))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, f.site(), "users/me", nil))

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := c.Get(cctx, f.site(), "users/me", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestEndpointURL(t *testing.T) {
	s := models.Site{URL: "https://a.example/"}
	assert.Equal(t, "https://a.example/wp-json/wp/v2/posts?per_page=100", EndpointURL(s, "posts?per_page=100"))
	assert.Equal(t, "https://a.example/wp-json/wp/v2/users/me", EndpointURL(s, "/users/me"))
}

func TestAPIError_Is(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: 401}, ErrUnauthorized)
	assert.ErrorIs(t, &APIError{StatusCode: 503}, ErrUnavailable)
	assert.NotErrorIs(t, &APIError{StatusCode: 400}, ErrUnavailable)
	assert.NotErrorIs(t, &APIError{StatusCode: 400}, ErrNotFound)
}
