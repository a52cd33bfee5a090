// Package api exposes the automation engine over HTTP. Pre-flight input
// validation is the only source of 4xx responses; anything that goes
// wrong inside the target page still returns 200 with success=false.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"go.uber.org/zap"

	"formrunner/internal/tasks"
)

type Server struct {
	engine   tasks.Engine
	registry *tasks.Registry
	log      *zap.Logger
}

func NewServer(engine tasks.Engine, registry *tasks.Registry, log *zap.Logger) *Server {
	return &Server{engine: engine, registry: registry, log: log}
}

func (s *Server) Router() http.Handler {
	requestLogger := httplog.NewLogger("formrunner", httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)

	r.Route("/api/automation", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status/{taskID}", s.handleStatus)
		r.Route("/{provider}", func(r chi.Router) {
			r.Get("/fields", s.handleFields)
			r.Post("/start", s.handleStart)
			r.Post("/start-async", s.handleStartAsync)
		})
	})

	return r
}
