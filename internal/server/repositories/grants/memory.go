package grants

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

type grantKey struct {
	projectID string
	userID    string
}

type storedGrant struct {
	grant models.Grant
	seq   int64
}

// MemoryRepository keeps grants in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	grants map[grantKey]*storedGrant
	next   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{grants: make(map[grantKey]*storedGrant)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, g *models.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := grantKey{g.ProjectID, g.UserID}
	if existing, ok := r.grants[k]; ok {
		existing.grant.Permission = g.Permission
		if g.Email != "" {
			existing.grant.Email = g.Email
		}
		return nil
	}
	r.next++
	r.grants[k] = &storedGrant{grant: *g, seq: r.next}
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, projectID, userID string) (*models.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.grants[grantKey{projectID, userID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	g := s.grant
	return &g, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, projectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := grantKey{projectID, userID}
	if _, ok := r.grants[k]; !ok {
		return common.ErrorNotFound
	}
	delete(r.grants, k)
	return nil
}

func (r *MemoryRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Grant, error) {
	return r.list(func(k grantKey) bool { return k.projectID == projectID }), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Grant, error) {
	return r.list(func(k grantKey) bool { return k.userID == userID }), nil
}

func (r *MemoryRepository) list(match func(k grantKey) bool) []*models.Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stored []*storedGrant
	for k, s := range r.grants {
		if match(k) {
			stored = append(stored, s)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	result := make([]*models.Grant, 0, len(stored))
	for _, s := range stored {
		g := s.grant
		result = append(result, &g)
	}
	return result
}
