package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/custodia-labs/pdfiq/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates holds one parsed set per page, each combined with the layout.
type templates struct {
	pages map[string]*template.Template
}

func loadTemplates() (*templates, error) {
	pages := []string{"index.html", "chat.html", "admin_login.html", "admin.html"}

	t := &templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

// render executes a page into a buffer first so a template error does not
// leave a half-written response.
func (s *Server) render(w http.ResponseWriter, page string, data map[string]any) {
	tmpl, ok := s.templates.pages[page]
	if !ok {
		logger.Error("unknown template %s", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("render %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
