// Package syncer keeps a local workspace and a server project in step:
// bulk upload and download, a polling watch loop that pushes local changes,
// and application of downstream live events.
//
// Every path the agent exchanges with the server is recorded with its
// content digest. A local file whose digest matches its record is not
// uploaded again, and a downstream event whose content matches the record
// is not written again, which keeps the agent from echoing its own writes.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/agent/client"
	"github.com/dmitrijs2005/sharelink/internal/agent/state"
	"github.com/dmitrijs2005/sharelink/internal/agent/workspace"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/live"
	"github.com/dmitrijs2005/sharelink/internal/logging"
)

// API is the part of the HTTP client the agent needs.
type API interface {
	PutFile(ctx context.Context, s client.Session, p client.ProjectRef, f client.File) (int64, error)
	GetFile(ctx context.Context, s client.Session, p client.ProjectRef, path string) (*client.File, error)
	DeleteFile(ctx context.Context, s client.Session, p client.ProjectRef, path string) error
	ListFiles(ctx context.Context, s client.Session, p client.ProjectRef) ([]client.FileInfo, error)
}

// Records stores what was last exchanged per path.
type Records interface {
	Get(ctx context.Context, project, path string) (*state.FileRecord, error)
	Put(ctx context.Context, rec state.FileRecord) error
	Delete(ctx context.Context, project, path string) error
	List(ctx context.Context, project string) ([]state.FileRecord, error)
}

// Report counts the outcome of one bulk operation.
type Report struct {
	Uploaded   int
	Downloaded int
	Deleted    int
	Skipped    int
	Failed     int
}

func (r Report) Empty() bool { return r == Report{} }

const readmeName = "README.md"

func readme(project string) []byte {
	return []byte(fmt.Sprintf("# %s\n\nThis project was shared with Code Share Link.", project))
}

type Agent struct {
	api     API
	session client.Session
	project client.ProjectRef
	ws      *workspace.Workspace
	records Records
	log     logging.Logger
}

func New(api API, session client.Session, project client.ProjectRef, ws *workspace.Workspace, records Records, log logging.Logger) *Agent {
	return &Agent{
		api:     api,
		session: session,
		project: project,
		ws:      ws,
		records: records,
		log:     log.With("module", "syncer", "project", project.Name),
	}
}

// key scopes records to one project; the owner keeps same-named projects of
// different users apart.
func (a *Agent) key() string {
	if a.project.Owner == "" {
		return a.project.Name
	}
	return a.project.Owner + "/" + a.project.Name
}

func (a *Agent) push(ctx context.Context, path string) (int64, error) {
	data, err := a.ws.Read(path)
	if err != nil {
		return 0, err
	}
	content, encoding := workspace.Encode(data)
	version, err := a.api.PutFile(ctx, a.session, a.project, client.File{Path: path, Content: content, Encoding: encoding})
	if err != nil {
		return 0, err
	}
	return version, a.records.Put(ctx, state.FileRecord{
		Project: a.key(),
		Path:    path,
		Digest:  workspace.DigestOf(data),
		Version: version,
	})
}

func (a *Agent) pull(ctx context.Context, path string) error {
	f, err := a.api.GetFile(ctx, a.session, a.project, path)
	if err != nil {
		return err
	}
	return a.write(ctx, f.Path, f.Content, f.Encoding, f.Version)
}

func (a *Agent) write(ctx context.Context, path, content, encoding string, version int64) error {
	data, err := workspace.Decode(content, encoding)
	if err != nil {
		return err
	}
	if err := a.ws.Write(path, data); err != nil {
		return err
	}
	return a.records.Put(ctx, state.FileRecord{
		Project: a.key(),
		Path:    path,
		Digest:  workspace.DigestOf(data),
		Version: version,
	})
}

// Upload sends every eligible workspace file. Failures are logged and
// counted; they do not stop the batch.
func (a *Agent) Upload(ctx context.Context) (Report, error) {
	var r Report

	entries, skipped, err := a.ws.Scan()
	if err != nil {
		return r, fmt.Errorf("scan workspace: %w", err)
	}

	for _, s := range skipped {
		a.log.Warn(ctx, "skipping file", "path", s.Path, "size", s.Size, "reason", s.Reason)
		r.Skipped++
	}

	for _, e := range entries {
		version, err := a.push(ctx, e.Path)
		if err != nil {
			a.log.Error(ctx, "upload failed", "path", e.Path, "error", err)
			r.Failed++
			continue
		}
		a.log.Debug(ctx, "uploaded", "path", e.Path, "version", version)
		r.Uploaded++
	}
	return r, nil
}

// Download writes every project file into the workspace. An empty project
// gets a README so the workspace is not left blank.
func (a *Agent) Download(ctx context.Context) (Report, error) {
	var r Report

	list, err := a.api.ListFiles(ctx, a.session, a.project)
	if err != nil {
		return r, err
	}

	if len(list) == 0 {
		if err := a.ws.Write(readmeName, readme(a.project.Name)); err != nil {
			return r, err
		}
		a.log.Info(ctx, "project is empty, created README")
		return r, nil
	}

	for _, f := range list {
		if err := a.pull(ctx, f.Path); err != nil {
			a.log.Error(ctx, "download failed", "path", f.Path, "error", err)
			r.Failed++
			continue
		}
		r.Downloaded++
	}
	return r, nil
}

// Poll compares the workspace with the records once: new and changed files
// are uploaded, recorded files that disappeared are deleted on the server.
func (a *Agent) Poll(ctx context.Context) (Report, error) {
	var r Report

	entries, skipped, err := a.ws.Scan()
	if err != nil {
		return r, fmt.Errorf("scan workspace: %w", err)
	}
	recs, err := a.records.List(ctx, a.key())
	if err != nil {
		return r, err
	}

	known := make(map[string]state.FileRecord, len(recs))
	for _, rec := range recs {
		known[rec.Path] = rec
	}
	for _, s := range skipped {
		delete(known, s.Path)
	}

	for _, e := range entries {
		rec, ok := known[e.Path]
		delete(known, e.Path)
		if ok && rec.Digest == e.Digest {
			continue
		}
		if _, err := a.push(ctx, e.Path); err != nil {
			a.log.Error(ctx, "upload failed", "path", e.Path, "error", err)
			r.Failed++
			continue
		}
		r.Uploaded++
	}

	gone := make([]string, 0, len(known))
	for path := range known {
		if !a.ws.Excluded(path) {
			gone = append(gone, path)
		}
	}
	sort.Strings(gone)

	for _, path := range gone {
		err := a.api.DeleteFile(ctx, a.session, a.project, path)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			a.log.Error(ctx, "delete failed", "path", path, "error", err)
			r.Failed++
			continue
		}
		if err := a.records.Delete(ctx, a.key(), path); err != nil {
			return r, err
		}
		r.Deleted++
	}
	return r, nil
}

// Apply writes a downstream event to the workspace. Events for other
// projects, stale versions and echoes of content already on disk are
// ignored.
func (a *Agent) Apply(ctx context.Context, m live.Message) error {
	if m.ProjectName != a.project.Name {
		return nil
	}

	rec, err := a.records.Get(ctx, a.key(), m.Path)
	if err != nil {
		return err
	}

	switch m.Type {
	case live.TypeFileUpdated:
		data, err := workspace.Decode(m.Content, m.Encoding)
		if err != nil {
			return err
		}
		if rec != nil && m.Version < rec.Version {
			a.log.Debug(ctx, "stale event ignored", "path", m.Path, "version", m.Version, "have", rec.Version)
			return nil
		}
		if rec != nil && rec.Digest == workspace.DigestOf(data) {
			rec.Version = m.Version
			return a.records.Put(ctx, *rec)
		}
		if err := a.write(ctx, m.Path, m.Content, m.Encoding, m.Version); err != nil {
			return err
		}
		a.log.Info(ctx, "file updated by another user", "path", m.Path, "version", m.Version)
		return nil

	case live.TypeFileDeleted:
		if err := a.ws.Remove(m.Path); err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		a.log.Info(ctx, "file deleted by another user", "path", m.Path)
		return a.records.Delete(ctx, a.key(), m.Path)
	}
	return nil
}

// Watch polls the workspace every interval and applies events as they
// arrive, until ctx ends. A closed events channel only stops event
// handling.
func (a *Agent) Watch(ctx context.Context, interval time.Duration, events <-chan live.Message) error {
	a.pollAndLog(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.pollAndLog(ctx)
		case m, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := a.Apply(ctx, m); err != nil {
				a.log.Error(ctx, "applying event failed", "path", m.Path, "type", m.Type, "error", err)
			}
		}
	}
}

func (a *Agent) pollAndLog(ctx context.Context) {
	r, err := a.Poll(ctx)
	if err != nil {
		a.log.Error(ctx, "poll failed", "error", err)
		return
	}
	if !r.Empty() {
		a.log.Info(ctx, "workspace synced", "uploaded", r.Uploaded, "deleted", r.Deleted, "failed", r.Failed)
	}
}
