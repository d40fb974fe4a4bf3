package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/delivery/http/handler"
	"github.com/user/debugpanel/internal/delivery/http/middleware"
	"github.com/user/debugpanel/pkg/metrics"
)

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/DebugPanel", h.HandleDebugPanel)
	r.Get("/metrics", m.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/requests", h.HandleListRequests)
	})

	return r
}
