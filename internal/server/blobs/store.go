// Package blobs holds file contents addressed by opaque storage keys.
// Metadata about which key belongs to which project file lives in the
// files repository; a key is written once and never mutated.
package blobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store saves and loads immutable blobs. Get and Delete return
// common.ErrorNotFound for unknown keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh storage key scoped to a project.
func NewKey(projectID string) string {
	return fmt.Sprintf("projects/%s/%v", projectID, uuid.New())
}
