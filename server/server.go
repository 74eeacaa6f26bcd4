// Package server 通过 HTTP 暴露编辑会话：指针事件、文本增删改、预览、导出与下载。
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ByLCY/mockup/assets"
	"github.com/ByLCY/mockup/core"
	"github.com/ByLCY/mockup/export"
	"github.com/ByLCY/mockup/fonts"
	"github.com/ByLCY/mockup/preview"
	"github.com/ByLCY/mockup/renderer"
)

// Options configures a Server.
type Options struct {
	Artifacts core.ArtifactStore
	Loader    assets.Loader
	Renderer  renderer.Renderer
	Fonts     *fonts.Registry
	// ExportTimeout 限制单次导出（含资源加载）的时长，0 表示不限制。
	ExportTimeout time.Duration
}

// Server holds the session registry and shared collaborators.
type Server struct {
	opts     Options
	sessions *Sessions
	preview  *preview.Renderer
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Fonts == nil {
		opts.Fonts = fonts.Default()
	}
	s := &Server{opts: opts, preview: preview.New(opts.Fonts)}
	s.sessions = NewSessions(func(id string, n export.Notifier) *export.Pipeline {
		return export.New(export.Options{
			Loader:   opts.Loader,
			Renderer: opts.Renderer,
			Store:    opts.Artifacts,
			Notifier: n,
			Session:  id,
		})
	}, opts.Artifacts)
	return s
}

// Sessions exposes the registry.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Router builds the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/palette", s.handlePalette)
		r.Get("/fonts", s.handleFonts)
		r.Get("/artifacts/{artifactID}", s.handleDownload)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/preview", s.handlePreview)

			r.Put("/surface", s.handleSetSurface)
			r.Put("/name", s.handleSetName)
			r.Put("/logo", s.handleSetLogo)
			r.Post("/logo/scale", s.handleStepLogoScale)

			r.Post("/pointer/down", s.handlePointerDown)
			r.Post("/pointer/move", s.handlePointerMove)
			r.Post("/pointer/up", s.handlePointerUp)

			r.Post("/texts", s.handleAddText)
			r.Patch("/texts/{textID}", s.handleUpdateText)
			r.Delete("/texts/{textID}", s.handleRemoveText)
			r.Post("/texts/{textID}/select", s.handleSelectText)
			r.Patch("/selection", s.handleUpdateSelected)
			r.Delete("/selection", s.handleDeselect)
			r.Post("/selection/scale", s.handleStepSelectedScale)

			r.Post("/reset", s.handleReset)
			r.Put("/menu", s.handleMenu)
			r.Post("/exports", s.handleExport)
			r.Delete("/toasts/{toastID}", s.handleDismissToast)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}
