package preview

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/markdown"
	"github.com/dmitrijs2005/textkeeper/internal/models"
)

const maxRenderBody = 1 << 20

// documentView is the JSON shape of GET /api/documents/{id}.
type documentView struct {
	models.Document
	HasDraft bool `json:"has_draft"`
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article class="preview">
{{.Body}}
</article>
</body>
</html>
`))

type page struct {
	Title string
	Body  template.HTML
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var (
		docs []models.Document
		err  error
	)
	if strings.TrimSpace(q) == "" {
		docs, err = s.store.ListDocuments(r.Context())
	} else {
		docs, err = s.store.SearchDocuments(r.Context(), q)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	draft, err := s.store.GetDraft(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentView{Document: *doc, HasDraft: draft != nil})
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	versions, err := s.store.ListVersions(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) previewDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	body, found, err := s.previewBody(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		http.Error(w, "version not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, page{Title: doc.Title, Body: template.HTML(s.renderText(body))})
	if err != nil {
		s.logger.Error(ctx, "preview template", "error", err)
	}
}

// previewBody picks the requested version, else the draft, else the latest
// manual version.
func (s *Server) previewBody(r *http.Request, id string) (string, bool, error) {
	ctx := r.Context()

	if vid := r.URL.Query().Get("version"); vid != "" {
		v, err := s.store.GetVersion(ctx, id, vid)
		if err != nil || v == nil {
			return "", false, err
		}
		return v.Body, true, nil
	}

	d, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return "", false, err
	}
	if d != nil {
		return d.Body, true, nil
	}

	v, err := s.store.GetLatestManualVersion(ctx, id)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", true, nil
	}
	return v.Body, true, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, s.renderText(string(data)))
}

func (s *Server) renderText(text string) string {
	start := time.Now()
	out := markdown.Render(text)
	if s.rec != nil {
		s.rec.ObserveRender(len(text), time.Since(start))
	}
	return out
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.logger.Error(r.Context(), "preview request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
