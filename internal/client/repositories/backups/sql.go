package backups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/dbx"
)

// SQLRepository implements Repository over SQLite or PostgreSQL.
// created_at is stored as unix nanoseconds in both dialects.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.DialectSQLite)
}

const selectColumns = `id, site_id, site_name, kind, object_key, size_bytes, status, created_at`

func (r *SQLRepository) Create(ctx context.Context, b *models.Backup) error {
	query := dbx.Rebind(r.dialect, `INSERT INTO backups (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.SiteID, b.SiteName, string(b.Kind), b.ObjectKey, b.SizeBytes, string(b.Status), b.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert backup: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListBySite(ctx context.Context, siteID string) ([]models.Backup, error) {
	query := dbx.Rebind(r.dialect, `SELECT `+selectColumns+` FROM backups
		WHERE site_id = ? ORDER BY created_at DESC`)

	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select backups: %w", err)
	}
	defer rows.Close()

	var result []models.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate backups: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	query := dbx.Rebind(r.dialect, `SELECT `+selectColumns+` FROM backups WHERE id = ?`)

	b, err := scanBackup(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backup: %w", err)
	}
	return b, nil
}

func (r *SQLRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `DELETE FROM backups WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBackup(s scanner) (*models.Backup, error) {
	var (
		b       models.Backup
		kind    string
		status  string
		created int64
	)
	if err := s.Scan(&b.ID, &b.SiteID, &b.SiteName, &kind, &b.ObjectKey, &b.SizeBytes, &status, &created); err != nil {
		return nil, err
	}
	b.Kind = models.BackupKind(kind)
	b.Status = models.BackupStatus(status)
	b.CreatedAt = time.Unix(0, created).UTC()
	return &b, nil
}
