package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sharelink/internal/server/repositories/files"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/grants"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/projects"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/users"
)

// MemoryRepositoryManager serves in-process repositories. WithTx serializes
// callers but cannot roll back partial writes.
type MemoryRepositoryManager struct {
	txMu sync.Mutex
	repo *Repositories
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		repo: &Repositories{
			Users:    users.NewMemoryRepository(),
			Projects: projects.NewMemoryRepository(),
			Grants:   grants.NewMemoryRepository(),
			Files:    files.NewMemoryRepository(),
		},
	}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Repositories() *Repositories {
	return m.repo
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.repo)
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
