package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/filex"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/blobs"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/repomanager"
)

// Publisher receives file events after every successful mutation.
type Publisher interface {
	Publish(room string, ev models.Event)
}

// StoredFile is a file read back from the store.
type StoredFile struct {
	Path    string
	Content models.Content
	Version int64
}

// FileService is the versioned file store. Writes to the same project path
// are serialized; each successful Put bumps the version by exactly one.
type FileService struct {
	repomanager    repomanager.RepositoryManager
	blobs          blobs.Store
	projects       *ProjectService
	publisher      Publisher
	maxContentSize int64
	locks          *keyedMutex
	log            logging.Logger
}

func NewFileService(m repomanager.RepositoryManager, store blobs.Store, projects *ProjectService,
	publisher Publisher, maxContentSize int64, log logging.Logger) *FileService {
	return &FileService{
		repomanager:    m,
		blobs:          store,
		projects:       projects,
		publisher:      publisher,
		maxContentSize: maxContentSize,
		locks:          newKeyedMutex(),
		log:            log.With("module", "files"),
	}
}

func cleanPath(p string) (string, error) {
	clean, err := filex.CleanRelPath(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %q", common.ErrorValidation, err, p)
	}
	return clean, nil
}

func lockKey(projectID, path string) string {
	return projectID + "\x00" + path
}

// Put stores content at path and returns the new version.
func (s *FileService) Put(ctx context.Context, actorID string, ref ProjectRef, path string, content models.Content) (int64, error) {
	path, err := cleanPath(path)
	if err != nil {
		return 0, err
	}
	if int64(len(content.Data)) > s.maxContentSize {
		return 0, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", common.ErrTooLarge, len(content.Data), s.maxContentSize)
	}
	if content.Encoding == "" {
		content.Encoding = models.EncodingUTF8
	}

	p, err := s.projects.Open(ctx, ref, actorID, models.OpWrite)
	if err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(lockKey(p.ID, path))
	defer unlock()

	key := blobs.NewKey(p.ID)
	if err := s.blobs.Put(ctx, key, content.Data); err != nil {
		return 0, fmt.Errorf("error storing content: %w", err)
	}

	version, prevKey, err := s.repomanager.Repositories().Files.Upsert(ctx, &models.File{
		ProjectID:  p.ID,
		Path:       path,
		Size:       int64(len(content.Data)),
		Encoding:   content.Encoding,
		StorageKey: key,
	})
	if err != nil {
		s.dropBlob(ctx, key)
		return 0, fmt.Errorf("error storing file: %w", err)
	}
	if prevKey != "" && prevKey != key {
		s.dropBlob(ctx, prevKey)
	}

	s.log.Debug(ctx, "file stored", "project", p.ID, "path", path, "version", version, "size", len(content.Data))

	// published under the path lock so subscribers see versions in order
	s.publisher.Publish(p.ID, models.Event{
		Type:        models.EventFileUpdated,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Path:        path,
		Content:     content,
		Version:     version,
	})

	return version, nil
}

func (s *FileService) Get(ctx context.Context, actorID string, ref ProjectRef, path string) (*StoredFile, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.Open(ctx, ref, actorID, models.OpRead)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lockKey(p.ID, path))
	defer unlock()

	f, err := s.repomanager.Repositories().Files.Get(ctx, p.ID, path)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: blob %s of %s is missing", common.ErrorInternal, f.StorageKey, path)
		}
		return nil, fmt.Errorf("error loading content: %w", err)
	}

	return &StoredFile{
		Path:    f.Path,
		Content: models.Content{Encoding: f.Encoding, Data: data},
		Version: f.Version,
	}, nil
}

func (s *FileService) Delete(ctx context.Context, actorID string, ref ProjectRef, path string) error {
	path, err := cleanPath(path)
	if err != nil {
		return err
	}

	p, err := s.projects.Open(ctx, ref, actorID, models.OpWrite)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(lockKey(p.ID, path))
	defer unlock()

	f, err := s.repomanager.Repositories().Files.Delete(ctx, p.ID, path)
	if err != nil {
		return err
	}
	s.dropBlob(ctx, f.StorageKey)

	s.log.Debug(ctx, "file deleted", "project", p.ID, "path", path)

	s.publisher.Publish(p.ID, models.Event{
		Type:        models.EventFileDeleted,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Path:        path,
	})
	return nil
}

func (s *FileService) List(ctx context.Context, actorID string, ref ProjectRef) ([]models.FileInfo, error) {
	p, err := s.projects.Open(ctx, ref, actorID, models.OpRead)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Repositories().Files.List(ctx, p.ID)
}

// dropBlob removes a blob that is no longer referenced. Failures only leak
// storage, so they are logged and otherwise ignored.
func (s *FileService) dropBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Warn(ctx, "failed to delete blob", "key", key, "error", err)
	}
}
