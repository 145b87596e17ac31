package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JossueJativa/websocket/pkg/health"
	"github.com/JossueJativa/websocket/pkg/middleware"
)

// NewRouter creates a chi router with the WebSocket upgrade endpoint, the
// REST read surface, and the operational endpoints registered.
func NewRouter(
	wsHandler http.Handler,
	orderHandler *OrderHandler,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware. Nothing here may wrap the ResponseWriter: the /ws
	// route hijacks the connection and needs the raw writer.
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))

	// WebSocket upgrade. Long-lived connection, so no timeout, compression
	// or response-recording middleware on this route.
	r.Get("/ws", wsHandler.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestLogging(logger))
		r.Use(middleware.PrometheusMetrics("deskorder"))
		r.Use(middleware.RequestLogger(logger))

		// Health check endpoints
		r.Get("/health/live", healthHandler.LivenessHandler())
		r.Get("/health/ready", healthHandler.ReadinessHandler())
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			promhttp.Handler().ServeHTTP(w, r)
		})

		// REST read surface
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))
			r.Use(middleware.NoStore)

			r.Get("/desks/{deskID}/orders", orderHandler.GetDeskOrders)
		})
	})

	return r
}
