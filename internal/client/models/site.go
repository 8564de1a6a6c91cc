// Package models defines the site registry records and the remote resource
// shapes mirrored from a WordPress REST API.
package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// AuthType selects how requests to a site are authenticated.
type AuthType string

const (
	AuthApplicationPassword AuthType = "application_password"
	AuthJWT                 AuthType = "jwt"
)

// Site is one connected WordPress instance together with its credentials.
//
// Exactly one secret is populated and it matches AuthType. Only
// IsConnected and LastConnected change after creation.
type Site struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	URL                 string     `json:"url"`
	Username            string     `json:"username"`
	ApplicationPassword string     `json:"applicationPassword,omitempty"`
	Token               string     `json:"token,omitempty"`
	AuthType            AuthType   `json:"authType"`
	IsConnected         bool       `json:"isConnected"`
	LastConnected       *time.Time `json:"lastConnected,omitempty"`
}

// BaseURL returns the site URL without its trailing slash.
func (s Site) BaseURL() string {
	return strings.TrimSuffix(s.URL, "/")
}

// Authorization returns the Authorization header value for s, or "" when the
// site carries no usable secret.
func (s Site) Authorization() string {
	return authorization(s.AuthType, s.Username, s.ApplicationPassword, s.Token)
}

// Credentials returns the connection input s was created from.
func (s Site) Credentials() Credentials {
	return Credentials{
		URL:                 s.URL,
		Username:            s.Username,
		ApplicationPassword: s.ApplicationPassword,
		Token:               s.Token,
		AuthType:            s.AuthType,
	}
}

// Credentials is the transient input of a connect or test operation.
type Credentials struct {
	URL                 string   `json:"url" validate:"required,url"`
	Username            string   `json:"username" validate:"required_if=AuthType application_password"`
	ApplicationPassword string   `json:"applicationPassword,omitempty" validate:"required_if=AuthType application_password"`
	Token               string   `json:"token,omitempty" validate:"required_if=AuthType jwt"`
	AuthType            AuthType `json:"authType" validate:"required,oneof=application_password jwt"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func credentialsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that c names a URL and carries the secret its AuthType needs.
func (c Credentials) Validate() error {
	err := credentialsValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid credentials: %s", strings.Join(fields, ", "))
	}
	return err
}

// BaseURL returns the candidate URL without its trailing slash.
func (c Credentials) BaseURL() string {
	return strings.TrimSuffix(c.URL, "/")
}

// Authorization returns the Authorization header value for c.
func (c Credentials) Authorization() string {
	return authorization(c.AuthType, c.Username, c.ApplicationPassword, c.Token)
}

// Hostname returns the host part of the URL, used as the site display name.
func (c Credentials) Hostname() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", c.URL)
	}
	return u.Hostname(), nil
}

// NewSite builds a Site from verified credentials. Only the secret matching
// AuthType is kept.
func NewSite(id string, c Credentials, now time.Time) (Site, error) {
	name, err := c.Hostname()
	if err != nil {
		return Site{}, err
	}

	s := Site{
		ID:            id,
		Name:          name,
		URL:           c.URL,
		Username:      c.Username,
		AuthType:      c.AuthType,
		IsConnected:   true,
		LastConnected: &now,
	}
	switch c.AuthType {
	case AuthApplicationPassword:
		s.ApplicationPassword = c.ApplicationPassword
	case AuthJWT:
		s.Token = c.Token
	}
	return s, nil
}

func authorization(t AuthType, username, password, token string) string {
	switch t {
	case AuthApplicationPassword:
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
	case AuthJWT:
		if token == "" {
			return ""
		}
		return "Bearer " + token
	default:
		return ""
	}
}
