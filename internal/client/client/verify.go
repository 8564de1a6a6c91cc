package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks whether credentials authenticate against a site.
type Verifier struct {
	rest *RestClient
	log  logging.Logger
	now  func() time.Time
}

func NewVerifier(rest *RestClient, log logging.Logger) *Verifier {
	if log == nil {
		log = logging.Discard()
	}
	return &Verifier{rest: rest, log: log, now: time.Now}
}

// TestConnection reports whether GET users/me succeeds with c and returns
// parseable JSON. It never fails; every problem means false.
func (v *Verifier) TestConnection(ctx context.Context, c models.Credentials) bool {
	if err := c.Validate(); err != nil {
		v.log.Warn(ctx, "connection test skipped", "error", err)
		return false
	}

	if c.AuthType == models.AuthJWT {
		if exp, ok := TokenExpiry(c.Token); ok && !exp.After(v.now()) {
			v.log.Warn(ctx, "connection test skipped: token expired", "expired_at", exp)
			return false
		}
	}

	var me json.RawMessage
	if _, err := v.rest.do(ctx, c, http.MethodGet, "users/me", nil, &me); err != nil {
		v.log.Warn(ctx, "connection test failed", "url", c.URL, "error", err)
		return false
	}

	v.log.Debug(ctx, "connection successful", "url", c.URL)
	return true
}

// TokenExpiry returns the exp claim of a JWT without verifying its
// signature. ok is false for opaque tokens and tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}
