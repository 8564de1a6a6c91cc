package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/wpkeeper/internal/client/client"
	"github.com/dmitrijs2005/wpkeeper/internal/client/config"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/client/repositories/backups"
	"github.com/dmitrijs2005/wpkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/wpkeeper/internal/client/services"
	"github.com/dmitrijs2005/wpkeeper/internal/client/store"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"golang.org/x/term"
)

type App struct {
	config    *config.Config
	db        *sql.DB
	log       logging.Logger
	registry  services.SiteRegistry
	syncer    services.Synchronizer
	backups   services.BackupService
	scheduler *services.BackupScheduler
	watcher   *services.ConnectivityWatcher
	reader    *bufio.Reader
	out       io.Writer
	// spin enables the terminal spinner around slow operations.
	spin bool
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, dialect, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	n := notify.Multi{notify.NewConsole(os.Stdout), notify.NewLog(log)}

	rest := client.NewRestClient(
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RateLimit),
		client.WithNotifier(n),
		client.WithLogger(log),
	)
	verifier := client.NewVerifier(rest, log)

	cs := store.NewCredentialStore(metadata.NewSQLRepository(db, dialect), log, c.VaultPassphrase)
	reg := services.NewSiteRegistry(ctx, cs, verifier, n, log)
	syncer := services.NewSynchronizer(rest, reg, n, log)
	services.Bind(reg, syncer)

	var presigner services.Presigner
	if c.BackupsEnabled() {
		presigner, err = services.NewS3Presigner(ctx, c.S3)
		if err != nil {
			_ = db.Close()
			log.Error(ctx, "error configuring object storage", "error", err)
			return nil, err
		}
	}
	bs := services.NewBackupService(backups.NewSQLRepository(db, dialect), presigner, reg, syncer, nil, n, log)

	a := &App{
		config:   c,
		db:       db,
		log:      log,
		registry: reg,
		syncer:   syncer,
		backups:  bs,
		watcher:  services.NewConnectivityWatcher(reg, verifier, c.ConnectivityCheckInterval, log),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		spin:     term.IsTerminal(int(os.Stdout.Fd())),
	}
	if presigner != nil && c.BackupSchedule != "" {
		a.scheduler = services.NewBackupScheduler(bs, log)
	}
	return a, nil
}

// Run loads the active site, starts the background jobs and blocks in the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.registry.Active() != nil {
		a.withSpinner("loading site", func() { a.syncer.RefreshAll(ctx) })
	}

	go a.watcher.Run(ctx)

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx, a.config.BackupSchedule); err != nil {
			return err
		}
		defer a.scheduler.Stop()
	}

	a.printf("wpkeeper console (type 'help' for commands)\n")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// status is shown in the prompt: the active site name and its connectivity.
func (a *App) status() string {
	site := a.registry.Active()
	if site == nil {
		return "no site"
	}
	status := site.Name
	if !site.IsConnected {
		status += " offline"
	}
	if a.syncer.IsLoading() {
		status += " loading"
	}
	return status
}
