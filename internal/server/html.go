package server

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/publisher"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

type imageView struct {
	Index  int
	URL    template.URL
	Prompt string
}

type pageView struct {
	Snapshot           workflow.Snapshot
	Catalog            *domain.Catalog
	Title              string
	Busy               bool
	RefreshSeconds     int
	CanGenerateArticle bool
	OutlineHTML        template.HTML
	ArticleHTML        template.HTML
	Images             []imageView
	ArticleFilename    string
}

// session は Cookie からセッションを解決し、無ければ新しく発行します。
func (s *Server) session(w http.ResponseWriter, r *http.Request) *workflow.Controller {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if ctrl, ok := s.store.Get(c.Value); ok {
			return ctrl
		}
	}
	id, ctrl := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.InfoContext(r.Context(), "Session created", "session", id)
	return ctrl
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	view, err := s.buildView(ctrl.Snapshot())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, view); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render page", "error", err)
	}
}

func (s *Server) buildView(snap workflow.Snapshot) (pageView, error) {
	view := pageView{
		Snapshot:           snap,
		Catalog:            s.manager.Catalog(),
		Title:              "SEO Writer",
		Busy:               snap.Busy(),
		RefreshSeconds:     refreshSeconds,
		CanGenerateArticle: snap.CanGenerateArticle(),
		ArticleFilename:    publisher.ArticleFilename(snap.Form.Keyword),
	}

	if snap.Analysis != nil && !snap.Editing {
		out, err := s.renderer.Render(snap.Analysis.SuggestedOutline)
		if err != nil {
			return view, err
		}
		view.OutlineHTML = template.HTML(out)
	}
	if snap.Article != "" {
		out, err := s.renderer.Render(snap.Article)
		if err != nil {
			return view, err
		}
		view.ArticleHTML = template.HTML(out)
		if title := publisher.ExtractTitle(snap.Article); title != "" {
			view.Title = title
		}
	}
	for i, img := range snap.Images {
		// data URI は html/template では安全でないと判定されるため明示的に許可します。
		if !strings.HasPrefix(img.URL, "data:image/") {
			continue
		}
		view.Images = append(view.Images, imageView{
			Index:  i,
			URL:    template.URL(img.URL),
			Prompt: img.Prompt,
		})
	}
	return view, nil
}

// redirectHome は POST 後に画面を再描画させます。
func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request, action string, err error) {
	if err != nil {
		slog.WarnContext(r.Context(), "Action rejected", "action", action, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseForm(w http.ResponseWriter, r *http.Request) (domain.FormData, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return domain.FormData{}, err
	}
	form := domain.FormData{
		Keyword:       r.PostFormValue("keyword"),
		Language:      r.PostFormValue("language"),
		ArticleStyle:  r.PostFormValue("articleStyle"),
		CustomContext: r.PostFormValue("customContext"),
	}
	if raw := r.PostFormValue("wordCount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return form, errors.Join(domain.ErrUnsupportedOption, err)
		}
		form.WordCount = n
	}
	return form, nil
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	form, err := parseForm(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	done, err := ctrl.Analyze(r.Context(), form)
	if err == nil {
		watch(detach(r.Context()), "analyze", done)
	}
	s.redirectHome(w, r, "analyze", err)
}

func (s *Server) handleOutlineEditForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.redirectHome(w, r, "outline-edit", ctrl.BeginEdit())
}

func (s *Server) handleOutlineSaveForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err := ctrl.UpdateDraft(r.PostFormValue("outline"))
	if err == nil {
		err = ctrl.SaveEdit()
	}
	s.redirectHome(w, r, "outline-save", err)
}

func (s *Server) handleOutlineCancelForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.redirectHome(w, r, "outline-cancel", ctrl.CancelEdit())
}

func (s *Server) handleArticleForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	done, err := ctrl.GenerateArticle(r.Context())
	if err == nil {
		watch(detach(r.Context()), "article", done)
	}
	s.redirectHome(w, r, "article", err)
}

func (s *Server) handleImagesForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	done, err := ctrl.GenerateImages(r.Context())
	if err == nil {
		watch(detach(r.Context()), "images", done)
	}
	s.redirectHome(w, r, "images", err)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.redirectHome(w, r, "reset", ctrl.Reset())
}

func (s *Server) handleDownloadArticle(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	serveArticle(w, ctrl.Snapshot())
}

func (s *Server) handleDownloadImage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	snap := ctrl.Snapshot()

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 || index >= len(snap.Images) {
		http.NotFound(w, r)
		return
	}
	mimeType, data, err := publisher.DecodeDataURI(snap.Images[index].URL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to decode image", "index", index, "error", err)
		http.Error(w, "invalid image data", http.StatusInternalServerError)
		return
	}

	filename := publisher.ImageFilename(snap.Form.Keyword, index, mimeType)
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", attachment(filename))
	_, _ = w.Write(data)
}

func serveArticle(w http.ResponseWriter, snap workflow.Snapshot) {
	if snap.Article == "" {
		http.Error(w, "article not generated", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(publisher.ArticleFilename(snap.Form.Keyword)))
	_, _ = w.Write([]byte(snap.Article))
}

func attachment(filename string) string {
	return `attachment; filename="` + strings.ReplaceAll(filename, `"`, "") + `"`
}
