package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/dbx"
)

// FileRecord is what the agent last exchanged with the server for one path.
type FileRecord struct {
	Project string
	Path    string
	Digest  [32]byte
	Version int64
}

type FileRepository struct {
	db dbx.DBTX
}

func NewFileRepository(db dbx.DBTX) *FileRepository {
	return &FileRepository{db: db}
}

// Get returns nil for an unknown path.
func (r *FileRepository) Get(ctx context.Context, project, path string) (*FileRecord, error) {
	rec := &FileRecord{Project: project, Path: path}
	var digest []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT digest, version FROM synced_files WHERE project = ? AND path = ?`,
		project, path).Scan(&digest, &rec.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get synced file %s: %w", path, err)
	}
	copy(rec.Digest[:], digest)
	return rec, nil
}

func (r *FileRepository) Put(ctx context.Context, rec FileRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO synced_files (project, path, digest, version) VALUES (?, ?, ?, ?)
		ON CONFLICT(project, path) DO UPDATE SET
			digest = excluded.digest,
			version = excluded.version,
			synced_at = CURRENT_TIMESTAMP
	`, rec.Project, rec.Path, rec.Digest[:], rec.Version)
	if err != nil {
		return fmt.Errorf("failed to store synced file %s: %w", rec.Path, err)
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, project, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM synced_files WHERE project = ? AND path = ?`, project, path)
	if err != nil {
		return fmt.Errorf("failed to delete synced file %s: %w", path, err)
	}
	return nil
}

// List returns the project's records ordered by path.
func (r *FileRepository) List(ctx context.Context, project string) ([]FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path, digest, version FROM synced_files WHERE project = ? ORDER BY path`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list synced files: %w", err)
	}
	defer rows.Close()

	var result []FileRecord
	for rows.Next() {
		rec := FileRecord{Project: project}
		var digest []byte
		if err := rows.Scan(&rec.Path, &digest, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan synced file row: %w", err)
		}
		copy(rec.Digest[:], digest)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate synced file rows: %w", err)
	}
	return result, nil
}
