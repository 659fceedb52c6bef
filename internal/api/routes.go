package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/tourneydesk/web"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.Metrics.Middleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusFound)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/{model}", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
		})
		r.Get("/{model}/", s.handleChangelist)
		r.Post("/{model}/", s.handleAction)
		r.Get("/{model}/add", s.handleAdd)
		r.Post("/{model}/add", s.handleAdd)
		r.Get("/{model}/{id}/change", s.handleChange)
		r.Post("/{model}/{id}/change", s.handleChange)
		r.Get("/{model}/{id}/delete", s.handleDelete)
		r.Post("/{model}/{id}/delete", s.handleDelete)
	})

	static, _ := fs.Sub(web.FS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return r
}
