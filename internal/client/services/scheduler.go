package services

import (
	"context"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"github.com/robfig/cron/v3"
)

// BackupScheduler runs full backups of the active site on a cron schedule.
type BackupScheduler struct {
	svc    BackupService
	cron   *cron.Cron
	log    logging.Logger
	runCtx context.Context
}

func NewBackupScheduler(svc BackupService, log logging.Logger) *BackupScheduler {
	if log == nil {
		log = logging.Discard()
	}
	return &BackupScheduler{
		svc:  svc,
		cron: cron.New(),
		log:  log,
	}
}

// Start schedules backups with a standard 5-field cron expression. ctx is
// passed to every run.
func (s *BackupScheduler) Start(ctx context.Context, schedule string) error {
	s.runCtx = ctx
	if _, err := s.cron.AddFunc(schedule, s.RunNow); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info(ctx, "backup scheduler started", "schedule", schedule)
	return nil
}

// RunNow performs one scheduled backup immediately.
func (s *BackupScheduler) RunNow() {
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.svc.Create(ctx, models.BackupFull); err != nil {
		s.log.Warn(ctx, "scheduled backup failed", "error", err)
	}
}

// Stop halts the schedule and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info(context.Background(), "backup scheduler stopped")
}
