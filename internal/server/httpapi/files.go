package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

type fileBody struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
	Version  int64  `json:"version,omitempty"`
}

func (s *Server) handlePutFile(w http.ResponseWriter, r *http.Request) {
	var req fileBody
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		req.Path = r.URL.Query().Get("path")
	}

	enc, err := models.ParseEncoding(req.Encoding)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", common.ErrorValidation, err))
		return
	}
	content, err := models.DecodeContent(enc, req.Content)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", common.ErrorValidation, err))
		return
	}

	// store and notify run to completion even if the client disconnects
	ctx := context.WithoutCancel(r.Context())
	version, err := s.files.Put(ctx, userIDFrom(ctx), projectRef(r), req.Path, content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"version": version})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.files.Get(r.Context(), userIDFrom(r.Context()), projectRef(r), r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fileBody{
		Path:     f.Path,
		Content:  f.Content.String(),
		Encoding: string(f.Content.Encoding),
		Version:  f.Version,
	})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" && r.ContentLength != 0 {
		var req fileBody
		if !decodeJSON(w, r, &req) {
			return
		}
		path = req.Path
	}

	ctx := context.WithoutCancel(r.Context())
	if err := s.files.Delete(ctx, userIDFrom(ctx), projectRef(r), path); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.files.List(r.Context(), userIDFrom(r.Context()), projectRef(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
