package httpserver

import (
	"net/http"
	"time"
)

// New builds the gateway's HTTP server. Purchase and bid handlers do their
// own per-call work quickly; the header timeout guards against slow-loris
// clients holding connections open.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
