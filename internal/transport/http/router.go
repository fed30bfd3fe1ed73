// Package httptransport assembles the service's HTTP surface: public
// purchase routes, admin configuration routes, health, and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "mintgate/internal/admin/handler"
	minterhandler "mintgate/internal/minter/handler"
	"mintgate/internal/platform/middleware"
)

// Registrar is anything that mounts routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires the shared middleware chain and mounts every handler.
func NewRouter(logger *slog.Logger, minter *minterhandler.Handler, admin *adminhandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	minter.Register(r)
	admin.Register(r)
	return r
}
