// Package repomanager bundles the server repositories behind one handle and
// owns schema migrations and transactions for the selected storage backend.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sharelink/internal/server/repositories/files"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/grants"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/projects"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/users"
)

// Repositories is a set of repositories sharing one connection or transaction.
type Repositories struct {
	Users    users.Repository
	Projects projects.Repository
	Grants   grants.Repository
	Files    files.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Repositories returns repositories bound to the plain connection.
	Repositories() *Repositories
	// WithTx runs fn with repositories bound to a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
	Close() error
}
