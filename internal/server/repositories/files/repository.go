// Package files stores file metadata rows; the bytes live in the blob store.
package files

import (
	"context"

	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// Repository persists file metadata keyed by (project, path).
type Repository interface {
	// Upsert creates the row with version 1 or bumps the version of an
	// existing row by exactly one. It returns the new version and the
	// storage key that was replaced, empty on create.
	Upsert(ctx context.Context, f *models.File) (version int64, previousKey string, err error)
	Get(ctx context.Context, projectID, path string) (*models.File, error)
	// Delete removes the row and returns it so the caller can drop the blob.
	Delete(ctx context.Context, projectID, path string) (*models.File, error)
	// List returns the files of a project in creation order.
	List(ctx context.Context, projectID string) ([]models.FileInfo, error)
}
