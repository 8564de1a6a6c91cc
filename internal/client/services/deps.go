package services

import (
	"context"

	"github.com/dmitrijs2005/wpkeeper/internal/client/client"
	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
)

// SiteStore persists the registry.
type SiteStore interface {
	Load(ctx context.Context) []models.Site
	Save(ctx context.Context, sites []models.Site) error
}

// ConnectionTester checks candidate credentials.
type ConnectionTester interface {
	TestConnection(ctx context.Context, c models.Credentials) bool
}

// API issues REST requests against a site.
type API interface {
	Request(ctx context.Context, t client.Target, method, endpoint string, body, out any) error
	Get(ctx context.Context, t client.Target, endpoint string, out any) error
	Total(ctx context.Context, t client.Target, endpoint string) (int, error)
}

// ActiveSiteSource exposes the currently selected site.
type ActiveSiteSource interface {
	Active() *models.Site
}
