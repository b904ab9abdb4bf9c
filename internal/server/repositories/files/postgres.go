package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/dbx"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a file row in a single statement. The version
// bump happens inside the conflict clause, so concurrent writers on other
// server instances still produce exactly one increment each. The CTE reads
// the pre-statement snapshot, which yields the storage key being replaced.
func (r *PostgresRepository) Upsert(ctx context.Context, f *models.File) (int64, string, error) {
	query := `
		WITH prev AS (
			SELECT storage_key FROM files WHERE project_id = $1 AND path = $2
		)
		INSERT INTO files (project_id, path, size, encoding, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, path)
		DO UPDATE SET
			size = EXCLUDED.size,
			encoding = EXCLUDED.encoding,
			storage_key = EXCLUDED.storage_key,
			version = files.version + 1,
			updated_at = now()
		RETURNING version, (SELECT storage_key FROM prev)
	`
	var (
		version int64
		prevKey sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query,
		f.ProjectID, f.Path, f.Size, string(f.Encoding), f.StorageKey).Scan(&version, &prevKey)
	if err != nil {
		return 0, "", fmt.Errorf("db error: %w", err)
	}
	f.Version = version
	return version, prevKey.String, nil
}

// Get returns the metadata row for (projectID, path).
func (r *PostgresRepository) Get(ctx context.Context, projectID, path string) (*models.File, error) {
	query := `
		SELECT project_id, path, size, encoding, version, storage_key, updated_at
		FROM files WHERE project_id = $1 AND path = $2
	`
	var (
		f   models.File
		enc string
	)
	err := r.db.QueryRowContext(ctx, query, projectID, path).
		Scan(&f.ProjectID, &f.Path, &f.Size, &enc, &f.Version, &f.StorageKey, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	f.Encoding = models.Encoding(enc)
	return &f, nil
}

// Delete removes the row and returns what was stored.
func (r *PostgresRepository) Delete(ctx context.Context, projectID, path string) (*models.File, error) {
	query := `
		DELETE FROM files WHERE project_id = $1 AND path = $2
		RETURNING project_id, path, size, version, storage_key
	`
	var f models.File
	err := r.db.QueryRowContext(ctx, query, projectID, path).
		Scan(&f.ProjectID, &f.Path, &f.Size, &f.Version, &f.StorageKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &f, nil
}

// List returns path, size and version for every file of projectID.
func (r *PostgresRepository) List(ctx context.Context, projectID string) ([]models.FileInfo, error) {
	query := `SELECT path, size, version FROM files WHERE project_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]models.FileInfo, 0)
	for rows.Next() {
		var item models.FileInfo
		if err := rows.Scan(&item.Path, &item.Size, &item.Version); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
