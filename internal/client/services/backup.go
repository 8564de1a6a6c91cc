package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/client/repositories/backups"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"github.com/dmitrijs2005/wpkeeper/internal/netx"
	"github.com/google/uuid"
)

// BackupService snapshots the mirrors of the active site to object storage.
type BackupService interface {
	Create(ctx context.Context, kind models.BackupKind) (*models.Backup, error)
	List(ctx context.Context) ([]models.Backup, error)
	Download(ctx context.Context, id string, w io.Writer) (int64, error)
	// Delete removes the stored object, if any, and the record.
	Delete(ctx context.Context, id string) error
}

type backupService struct {
	repo      backups.Repository
	presigner Presigner
	active    ActiveSiteSource
	syncer    Synchronizer
	hc        *http.Client
	notifier  notify.Notifier
	log       logging.Logger

	now   func() time.Time
	newID func() string
}

// NewBackupService returns a service whose operations fail with
// common.ErrBackupsDisabled when presigner is nil.
func NewBackupService(repo backups.Repository, presigner Presigner, active ActiveSiteSource, syncer Synchronizer, hc *http.Client, n notify.Notifier, log logging.Logger) BackupService {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = logging.Discard()
	}
	return &backupService{
		repo:      repo,
		presigner: presigner,
		active:    active,
		syncer:    syncer,
		hc:        hc,
		notifier:  n,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *backupService) snapshot(site models.Site, kind models.BackupKind, at time.Time) models.Snapshot {
	snap := models.Snapshot{Site: site.Name, URL: site.URL, Kind: kind, CreatedAt: at}
	if kind == models.BackupFull || kind == models.BackupContent {
		snap.Posts = s.syncer.Posts()
		snap.Pages = s.syncer.Pages()
		snap.Courses = s.syncer.Courses()
	}
	if kind == models.BackupFull || kind == models.BackupUsers {
		snap.Users = s.syncer.Users()
		snap.Students = s.syncer.Students()
	}
	if kind == models.BackupFull {
		snap.Plugins = s.syncer.Plugins()
		snap.Themes = s.syncer.Themes()
	}
	return snap
}

func (s *backupService) Create(ctx context.Context, kind models.BackupKind) (*models.Backup, error) {
	if s.presigner == nil {
		return nil, common.ErrBackupsDisabled
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownBackupKind, kind)
	}
	site := s.active.Active()
	if site == nil {
		return nil, common.ErrNoActiveSite
	}

	at := s.now().Round(0).UTC()
	id := s.newID()
	b := &models.Backup{
		ID:        id,
		SiteID:    site.ID,
		SiteName:  site.Name,
		Kind:      kind,
		ObjectKey: fmt.Sprintf("backups/%s/%s/%s-%s.json", site.ID, at.Format("2006/01/02"), kind, id),
		Status:    models.BackupCompleted,
		CreatedAt: at,
	}

	body, err := json.MarshalIndent(s.snapshot(*site, kind, at), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	uploadErr := s.upload(ctx, b.ObjectKey, body)
	if uploadErr != nil {
		b.Status = models.BackupFailed
	} else {
		b.SizeBytes = int64(len(body))
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, errors.Join(uploadErr, err)
	}

	if uploadErr != nil {
		s.log.Error(ctx, "backup upload failed", "site", site.Name, "kind", kind, "error", uploadErr)
		s.notifier.Notify(ctx, notify.Notification{
			Title:       "Backup Failed",
			Description: uploadErr.Error(),
			Severity:    notify.SeverityDestructive,
		})
		return b, uploadErr
	}

	s.log.Info(ctx, "backup created", "site", site.Name, "kind", kind, "key", b.ObjectKey, "bytes", b.SizeBytes)
	s.notifier.Notify(ctx, notify.Notification{
		Title:       "Backup Created",
		Description: fmt.Sprintf("%s backup of %s (%d bytes)", kind, site.Name, b.SizeBytes),
	})
	return b, nil
}

func (s *backupService) upload(ctx context.Context, key string, body []byte) error {
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return fmt.Errorf("presign upload: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, s.hc, url, body, "application/json"); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	return nil
}

// List returns the backups of the active site, newest first.
func (s *backupService) List(ctx context.Context) ([]models.Backup, error) {
	if s.presigner == nil {
		return nil, common.ErrBackupsDisabled
	}
	site := s.active.Active()
	if site == nil {
		return nil, common.ErrNoActiveSite
	}
	return s.repo.ListBySite(ctx, site.ID)
}

func (s *backupService) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	if s.presigner == nil {
		return 0, common.ErrBackupsDisabled
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if b.Status != models.BackupCompleted {
		return 0, fmt.Errorf("backup %s was not uploaded", id)
	}

	url, err := s.presigner.PresignGet(ctx, b.ObjectKey)
	if err != nil {
		return 0, fmt.Errorf("presign download: %w", err)
	}
	return netx.DownloadFromPresignedURL(ctx, s.hc, url, w)
}

func (s *backupService) Delete(ctx context.Context, id string) error {
	if s.presigner == nil {
		return common.ErrBackupsDisabled
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if b.Status == models.BackupCompleted {
		url, err := s.presigner.PresignDelete(ctx, b.ObjectKey)
		if err != nil {
			return fmt.Errorf("presign delete: %w", err)
		}
		if err := netx.DeleteAtPresignedURL(ctx, s.hc, url); err != nil {
			return fmt.Errorf("delete object: %w", err)
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "backup deleted", "id", id, "key", b.ObjectKey)
	s.notifier.Notify(ctx, notify.Notification{
		Title:       "Backup Deleted",
		Description: fmt.Sprintf("%s backup of %s removed", b.Kind, b.SiteName),
	})
	return nil
}
