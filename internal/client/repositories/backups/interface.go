// Package backups records the snapshots uploaded to object storage so they
// can be listed and downloaded later.
package backups

import (
	"context"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
)

type Repository interface {
	// Create inserts a new backup record.
	Create(ctx context.Context, b *models.Backup) error

	// ListBySite returns the records of one site, newest first.
	ListBySite(ctx context.Context, siteID string) ([]models.Backup, error)

	// GetByID returns common.ErrorNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*models.Backup, error)

	DeleteByID(ctx context.Context, id string) error
}
