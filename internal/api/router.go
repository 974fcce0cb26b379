package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unixdj/dynqr/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// maxUpload limits request bodies, logo uploads included.
func NewRouter(svc *service.Service, logger *zap.Logger, maxUpload int64) chi.Router {
	h := NewHandler(svc, logger, maxUpload)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Metrics())
	r.Use(middleware.Recoverer)

	// Generation.
	r.Post("/generate", h.Generate)

	// Records.
	r.Get("/codes", h.ListCodes)
	r.Get("/codes/{id}", h.GetCode)
	r.Put("/codes/{id}", h.UpdateCode)
	r.Get("/codes/{id}/image", h.CodeImage)

	// Form routes.
	r.Get("/edit/{id}", h.GetCode)
	r.Post("/edit/{id}", h.EditCode)

	// Dynamic redirect.
	r.Get("/r/{id}", h.Redirect)

	return r
}
