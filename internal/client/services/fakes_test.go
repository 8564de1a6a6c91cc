package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/wpkeeper/internal/client/client"
	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
)

type memStore struct {
	mu    sync.Mutex
	sites []models.Site
	saves int
	err   error
}

func (m *memStore) Load(context.Context) []models.Site {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Site(nil), m.sites...)
}

func (m *memStore) Save(_ context.Context, sites []models.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.sites = append([]models.Site(nil), sites...)
	return nil
}

func (m *memStore) saved() []models.Site {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Site(nil), m.sites...)
}

type stubTester struct {
	mu    sync.Mutex
	ok    bool
	calls []models.Credentials
}

func (s *stubTester) TestConnection(_ context.Context, c models.Credentials) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.ok
}

func (s *stubTester) set(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ok = ok
}

type call struct {
	Method   string
	Endpoint string
	Body     any
}

// fakeAPI serves canned JSON per endpoint. Endpoints without a response
// fail with a 404 APIError.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	totals    map[string]int
	postErr   error
	calls     []call
	// block, when set, is waited on before serving endpoint.
	block map[string]chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: map[string]string{},
		totals:    map[string]int{},
		block:     map[string]chan struct{}{},
	}
}

func (f *fakeAPI) respond(endpoint, body string) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[endpoint] = body
	return f
}

func (f *fakeAPI) Request(ctx context.Context, t client.Target, method, endpoint string, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: method, Endpoint: endpoint, Body: body})
	wait := f.block[endpoint]
	resp, ok := f.responses[endpoint]
	postErr := f.postErr
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if method != "GET" {
		return postErr
	}
	if !ok {
		return &client.APIError{StatusCode: 404, Body: "rest_no_route", Endpoint: endpoint}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (f *fakeAPI) Get(ctx context.Context, t client.Target, endpoint string, out any) error {
	return f.Request(ctx, t, "GET", endpoint, nil, out)
}

func (f *fakeAPI) Total(_ context.Context, _ client.Target, endpoint string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: "HEAD", Endpoint: endpoint})
	n, ok := f.totals[endpoint]
	if !ok {
		return 0, errors.New("no total")
	}
	return n, nil
}

func (f *fakeAPI) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Endpoint)
	}
	return out
}

func (f *fakeAPI) posted(endpoint string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method == "POST" && c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) count(prefix string) int {
	n := 0
	for _, e := range f.endpoints() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

type fixedSite struct{ site *models.Site }

func (f *fixedSite) Active() *models.Site {
	if f.site == nil {
		return nil
	}
	s := *f.site
	return &s
}

// zeroRand always picks the first option.
type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

// seqRand returns the given values in turn, modulo n.
type seqRand struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func testSite(id string) models.Site {
	return models.Site{
		ID:                  id,
		Name:                id + ".example.com",
		URL:                 fmt.Sprintf("https://%s.example.com", id),
		Username:            "admin",
		ApplicationPassword: "abcd efgh",
		AuthType:            models.AuthApplicationPassword,
		IsConnected:         true,
	}
}

func appCreds(url string) models.Credentials {
	return models.Credentials{
		URL:                 url,
		Username:            "admin",
		ApplicationPassword: "abcd efgh",
		AuthType:            models.AuthApplicationPassword,
	}
}
