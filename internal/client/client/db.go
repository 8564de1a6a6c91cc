package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/wpkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/wpkeeper/internal/dbx"
	"github.com/dmitrijs2005/wpkeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DialectForDSN picks PostgreSQL for postgres:// URLs and SQLite otherwise.
func DialectForDSN(dsn string) dbx.Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dbx.DialectPostgres
	}
	return dbx.DialectSQLite
}

func driverName(d dbx.Dialect) string {
	if d == dbx.DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func migrationsDir(d dbx.Dialect) string {
	if d == dbx.DialectPostgres {
		return migrations.PostgresDir
	}
	return migrations.SQLiteDir
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

func RunMigrations(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(string(d)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, migrationsDir(d))
}

// InitDatabase opens the registry database named by dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, dbx.Dialect, error) {
	d := DialectForDSN(dsn)

	if d == dbx.DialectSQLite {
		var err error
		if dsn, err = filex.EnsureParentDir(dsn); err != nil {
			return nil, d, err
		}
	}

	db, err := sql.Open(driverName(d), dsn)
	if err != nil {
		return nil, d, err
	}
	if d == dbx.DialectSQLite {
		// single connection: modernc sqlite reports SQLITE_BUSY on concurrent writers
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, d, fmt.Errorf("migrate %s database: %w", d, err)
	}
	return db, d, nil
}
