package api

import (
	"html/template"
	"net/http"

	"github.com/vytor/tourneydesk/internal/admin"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
)

type Server struct {
	DB        *db.DB
	Site      *admin.Site
	Templates *template.Template
	// Metrics is optional; a nil value disables /metrics and the counters.
	Metrics *Metrics
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["site_title"]; !ok {
		data["site_title"] = s.Site.Title
	}
	if _, ok := data["body_class"]; !ok {
		data["body_class"] = ""
	}

	log := logger.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
