package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/blobs"
	"github.com/dmitrijs2005/sharelink/internal/server/config"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/permissions"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(room string, ev models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Event(nil), p.events...)
}

type env struct {
	rm        *repomanager.MemoryRepositoryManager
	blobs     *blobs.MemoryStore
	pub       *recordingPublisher
	users     *UserService
	projects  *ProjectService
	files     *FileService
	ctx       context.Context
	userIDs   map[string]string
	userEmail map[string]string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.MaxContentSize = 1024

	rm := repomanager.NewMemoryRepositoryManager()
	store := blobs.NewMemoryStore()
	pub := &recordingPublisher{}
	engine := permissions.NewEngine(rm.Repositories().Grants)
	projects := NewProjectService(rm, engine, cfg.LinkBaseURL, logging.Discard())

	return &env{
		rm:        rm,
		blobs:     store,
		pub:       pub,
		users:     NewUserService(rm, cfg),
		projects:  projects,
		files:     NewFileService(rm, store, projects, pub, cfg.MaxContentSize, logging.Discard()),
		ctx:       context.Background(),
		userIDs:   map[string]string{},
		userEmail: map[string]string{},
	}
}

// user registers name@example.com and returns its ID.
func (e *env) user(t *testing.T, name string) string {
	t.Helper()
	if id, ok := e.userIDs[name]; ok {
		return id
	}
	email := name + "@example.com"
	_, u, err := e.users.Register(e.ctx, email, "pw-"+name)
	require.NoError(t, err)
	e.userIDs[name] = u.ID
	e.userEmail[name] = email
	return u.ID
}

func text(s string) models.Content {
	return models.Content{Encoding: models.EncodingUTF8, Data: []byte(s)}
}

func strPtr(s string) *string { return &s }
