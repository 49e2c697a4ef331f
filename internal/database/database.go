package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Database struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	// SQLite allows a single writer; in-memory databases also vanish when the
	// last connection closes.
	dbFile.SetMaxOpenConns(1)

	dbInstance, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create DB instance: %w", err), dbFile.Close())
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create source instance: %w", err), dbFile.Close())
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create migrate instance: %w", err), dbFile.Close())
	}

	migrateErr := m.Up()

	version, dirty, versionErr := m.Version()
	fields := []any{
		"dbPath", dbPath,
	}

	if versionErr == nil {
		fields = append(fields, "version", version, "dirty", dirty)
	} else if !errors.Is(versionErr, migrate.ErrNilVersion) {
		log.WarnContext(ctx, "Failed to fetch migration version",
			"error", versionErr,
			"dbPath", dbPath)
	}

	if migrateErr != nil {
		if !errors.Is(migrateErr, migrate.ErrNoChange) {
			return nil, errors.Join(fmt.Errorf("apply migrations: %w", migrateErr), dbFile.Close())
		}

		log.InfoContext(ctx, "No migrations to apply", fields...)
	} else {
		log.InfoContext(ctx, "DB is migrated", fields...)
	}

	return &Database{db: dbFile, log: log}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
