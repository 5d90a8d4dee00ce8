package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/publisher"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookieName = "seo_writer_session"
	maxBodyBytes      = 1 << 20
	refreshSeconds    = 2
)

// Server は HTML 画面と JSON API の両方を提供します。
type Server struct {
	manager  *workflow.Manager
	store    *SessionStore
	renderer *publisher.MarkdownRenderer
	page     *template.Template
}

// New は Manager を基に Server を生成します。
func New(manager *workflow.Manager, sessionTTL time.Duration) (*Server, error) {
	if manager == nil {
		return nil, errors.New("manager は必須です")
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートのパースに失敗しました: %w", err)
	}
	return &Server{
		manager:  manager,
		store:    NewSessionStore(sessionTTL, manager.NewController),
		renderer: publisher.NewMarkdownRenderer(),
		page:     page,
	}, nil
}

// Routes はルーティング済みの http.Handler を返します。
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// HTML
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyzeForm)
	mux.HandleFunc("POST /outline/edit", s.handleOutlineEditForm)
	mux.HandleFunc("POST /outline/save", s.handleOutlineSaveForm)
	mux.HandleFunc("POST /outline/cancel", s.handleOutlineCancelForm)
	mux.HandleFunc("POST /article", s.handleArticleForm)
	mux.HandleFunc("POST /images", s.handleImagesForm)
	mux.HandleFunc("POST /reset", s.handleResetForm)
	mux.HandleFunc("GET /download/article", s.handleDownloadArticle)
	mux.HandleFunc("GET /download/images/{index}", s.handleDownloadImage)

	// JSON API
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleSessionGet))
	mux.HandleFunc("POST /api/sessions/{id}/analyze", s.withSession(s.handleAnalyze))
	mux.HandleFunc("POST /api/sessions/{id}/outline/edit", s.withSession(s.handleOutlineEdit))
	mux.HandleFunc("PUT /api/sessions/{id}/outline", s.withSession(s.handleOutlineUpdate))
	mux.HandleFunc("POST /api/sessions/{id}/outline/save", s.withSession(s.handleOutlineSave))
	mux.HandleFunc("POST /api/sessions/{id}/outline/cancel", s.withSession(s.handleOutlineCancel))
	mux.HandleFunc("POST /api/sessions/{id}/article", s.withSession(s.handleArticle))
	mux.HandleFunc("POST /api/sessions/{id}/images", s.withSession(s.handleImages))
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.withSession(s.handleReset))
	mux.HandleFunc("GET /api/sessions/{id}/article.md", s.withSession(s.handleArticleMarkdown))

	return logMiddleware(mux)
}

// watch は非同期処理の完了を待ってログに残します。
func watch(ctx context.Context, action string, done <-chan error) {
	go func() {
		err := <-done
		switch {
		case err == nil:
			slog.InfoContext(ctx, "Action completed", "action", action)
		case errors.Is(err, workflow.ErrStaleResult):
			slog.InfoContext(ctx, "Action result discarded after reset", "action", action)
		default:
			slog.ErrorContext(ctx, "Action failed", "action", action, "error", err)
		}
	}()
}

// statusFor はドメインのエラーを HTTP ステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyKeyword), errors.Is(err, domain.ErrUnsupportedOption):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrOutlineEditing),
		errors.Is(err, workflow.ErrNotEditing),
		errors.Is(err, workflow.ErrImagesInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
