package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps projects in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Project
	seq  map[string]int64
	next int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Project),
		seq:  make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Name == p.Name && existing.OwnerID == p.OwnerID {
			return nil, common.ErrConflict
		}
	}

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.PublicPermission == "" {
		p.PublicPermission = models.PermissionRead
	}
	stored := *p
	r.byID[p.ID] = &stored
	r.next++
	r.seq[p.ID] = r.next

	return p, nil
}

func (r *MemoryRepository) find(match func(p *models.Project) bool) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return r.find(func(p *models.Project) bool { return p.ID == id })
}

func (r *MemoryRepository) GetByNameAndOwner(ctx context.Context, name, ownerID string) (*models.Project, error) {
	return r.find(func(p *models.Project) bool { return p.Name == name && p.OwnerID == ownerID })
}

func (r *MemoryRepository) GetByLinkID(ctx context.Context, linkID string) (*models.Project, error) {
	if linkID == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(p *models.Project) bool { return p.LinkID == linkID })
}

func (r *MemoryRepository) list(match func(p *models.Project) bool) []*models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Project
	for _, p := range r.byID {
		if match(p) {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return r.seq[result[i].ID] < r.seq[result[j].ID] })
	return result
}

func (r *MemoryRepository) ListByName(ctx context.Context, name string) ([]*models.Project, error) {
	return r.list(func(p *models.Project) bool { return p.Name == name }), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return r.list(func(p *models.Project) bool { return p.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) SetLinkID(ctx context.Context, id, linkID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	if p.LinkID == "" {
		p.LinkID = linkID
	}
	return p.LinkID, nil
}

func (r *MemoryRepository) SetPublicAccess(ctx context.Context, id string, enabled bool, permission models.PermissionLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.PublicAccess = enabled
	p.PublicPermission = permission
	return nil
}
