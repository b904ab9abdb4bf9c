// Package state keeps the sync agent's local bookkeeping in SQLite: the
// saved session and, per project, the digest and version of every file
// last exchanged with the server.
package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/agent/state/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Store struct {
	db       *sql.DB
	Metadata *MetadataRepository
	Files    *FileRepository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the state database at dsn and migrates
// it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; the agent is a single process
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state migrations: %w", err)
	}

	return &Store{
		db:       db,
		Metadata: NewMetadataRepository(db),
		Files:    NewFileRepository(db),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
