package cli

import (
	"context"
	"os"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/filex"
)

func (a *App) backup(ctx context.Context, args []string) error {
	var (
		b   *models.Backup
		err error
	)
	a.withSpinner("uploading backup", func() { b, err = a.backups.Create(ctx, models.BackupKind(args[0])) })
	if err != nil {
		return err
	}
	a.printf("Backup %s stored as %s\n", b.ID, b.ObjectKey)
	return nil
}

func (a *App) listBackups(ctx context.Context, _ []string) error {
	list, err := a.backups.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No backups yet.\n")
		return nil
	}

	w := a.table("ID", "KIND", "STATUS", "SIZE", "CREATED")
	defer w.Flush()
	for _, b := range list {
		row(w, b.ID, b.Kind, b.Status, b.SizeBytes, b.CreatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) download(ctx context.Context, args []string) (err error) {
	path, err := filex.ExpandHome(args[1])
	if err != nil {
		return err
	}
	if path, err = filex.EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var n int64
	a.withSpinner("downloading backup", func() { n, err = a.backups.Download(ctx, args[0], f) })
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	a.printf("Saved %d bytes to %s\n", n, path)
	return nil
}

func (a *App) removeBackup(ctx context.Context, args []string) error {
	return a.backups.Delete(ctx, args[0])
}
