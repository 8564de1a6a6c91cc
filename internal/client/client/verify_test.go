package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func verifierServer(t *testing.T, wantAuth string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	r := chi.NewRouter()
	r.Get("/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != wantAuth {
			http.Error(w, `{"code":"rest_not_logged_in"}`, http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"name":"admin"}`)
	})
	r.Get("/html/wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `<html>login</html>`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestVerifier_TestConnection(t *testing.T) {
	good := models.Credentials{Username: "admin", ApplicationPassword: "pw", AuthType: models.AuthApplicationPassword}
	srv, _ := verifierServer(t, good.Authorization())

	rec := &notify.Recorder{}
	v := NewVerifier(NewRestClient(WithNotifier(rec)), nil)
	ctx := context.Background()

	good.URL = srv.URL + "/"
	assert.True(t, v.TestConnection(ctx, good))

	bad := good
	bad.ApplicationPassword = "wrong"
	assert.False(t, v.TestConnection(ctx, bad))

	html := good
	html.URL = srv.URL + "/html"
	assert.False(t, v.TestConnection(ctx, html))

	assert.Empty(t, rec.All())
}

func TestVerifier_InvalidCredentialsSkipNetwork(t *testing.T) {
	srv, calls := verifierServer(t, "")
	v := NewVerifier(NewRestClient(), nil)

	ok := v.TestConnection(context.Background(), models.Credentials{URL: srv.URL, AuthType: models.AuthApplicationPassword})
	assert.False(t, ok)
	assert.Equal(t, int32(0), calls.Load())
}

func TestVerifier_UnreachableHost(t *testing.T) {
	srv, _ := verifierServer(t, "")
	url := srv.URL
	srv.Close()

	v := NewVerifier(NewRestClient(), nil)
	assert.False(t, v.TestConnection(context.Background(), models.Credentials{URL: url, Token: "t", AuthType: models.AuthJWT}))
}

func TestVerifier_JWT(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	srv, calls := verifierServer(t, "Bearer "+valid)
	v := NewVerifier(NewRestClient(), nil)
	ctx := context.Background()

	assert.True(t, v.TestConnection(ctx, models.Credentials{URL: srv.URL, Token: valid, AuthType: models.AuthJWT}))
	assert.Equal(t, int32(1), calls.Load())

	expired := signedToken(t, time.Now().Add(-time.Hour))
	assert.False(t, v.TestConnection(ctx, models.Credentials{URL: srv.URL, Token: expired, AuthType: models.AuthJWT}))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	_, ok = TokenExpiry("")
	assert.False(t, ok)
}
