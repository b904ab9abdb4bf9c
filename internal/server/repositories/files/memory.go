package files

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

type fileKey struct {
	projectID string
	path      string
}

type storedFile struct {
	file models.File
	seq  int64
}

// MemoryRepository keeps file metadata in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[fileKey]*storedFile
	next  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[fileKey]*storedFile)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, f *models.File) (int64, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := fileKey{f.ProjectID, f.Path}
	now := time.Now().UTC()

	if s, ok := r.files[k]; ok {
		prev := s.file.StorageKey
		s.file.Size = f.Size
		s.file.Encoding = f.Encoding
		s.file.StorageKey = f.StorageKey
		s.file.Version++
		s.file.UpdatedAt = now
		f.Version = s.file.Version
		return s.file.Version, prev, nil
	}

	r.next++
	stored := *f
	stored.Version = 1
	stored.UpdatedAt = now
	r.files[k] = &storedFile{file: stored, seq: r.next}
	f.Version = 1
	return 1, "", nil
}

func (r *MemoryRepository) Get(ctx context.Context, projectID, path string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.files[fileKey{projectID, path}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f := s.file
	return &f, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, projectID, path string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := fileKey{projectID, path}
	s, ok := r.files[k]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.files, k)
	f := s.file
	return &f, nil
}

func (r *MemoryRepository) List(ctx context.Context, projectID string) ([]models.FileInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stored []*storedFile
	for k, s := range r.files {
		if k.projectID == projectID {
			stored = append(stored, s)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	result := make([]models.FileInfo, 0, len(stored))
	for _, s := range stored {
		result = append(result, models.FileInfo{Path: s.file.Path, Size: s.file.Size, Version: s.file.Version})
	}
	return result, nil
}
