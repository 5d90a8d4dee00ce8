package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller)

type sessionResponse struct {
	ID                 string            `json:"id"`
	Snapshot           workflow.Snapshot `json:"snapshot"`
	CanGenerateArticle bool              `json:"canGenerateArticle"`
}

type outlineRequest struct {
	Outline string `json:"outline"`
}

func newSessionResponse(id string, ctrl *workflow.Controller) sessionResponse {
	snap := ctrl.Snapshot()
	return sessionResponse{
		ID:                 id,
		Snapshot:           snap,
		CanGenerateArticle: snap.CanGenerateArticle(),
	}
}

// withSession はパスの {id} からセッションを解決します。見つからない場合は 404 を返します。
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		ctrl, ok := s.store.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		next(w, r, id, ctrl)
	}
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Catalog())
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.store.Create()
	slog.InfoContext(r.Context(), "Session created", "session", id)
	writeJSON(w, http.StatusCreated, newSessionResponse(id, ctrl))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	var form domain.FormData
	if err := decodeJSON(w, r, &form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	done, err := ctrl.Analyze(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	watch(detach(r.Context()), "analyze", done)
	writeJSON(w, http.StatusAccepted, newSessionResponse(id, ctrl))
}

func (s *Server) handleOutlineEdit(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	if err := ctrl.BeginEdit(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleOutlineUpdate(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	var req outlineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := ctrl.UpdateDraft(req.Outline); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleOutlineSave(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	if err := ctrl.SaveEdit(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleOutlineCancel(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	if err := ctrl.CancelEdit(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	done, err := ctrl.GenerateArticle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	watch(detach(r.Context()), "article", done)
	writeJSON(w, http.StatusAccepted, newSessionResponse(id, ctrl))
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	done, err := ctrl.GenerateImages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	watch(detach(r.Context()), "images", done)
	writeJSON(w, http.StatusAccepted, newSessionResponse(id, ctrl))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	if err := ctrl.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(id, ctrl))
}

func (s *Server) handleArticleMarkdown(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	serveArticle(w, ctrl.Snapshot())
}

func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
