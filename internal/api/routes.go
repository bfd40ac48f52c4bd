package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yegors/stdatmo/internal/config"
	"github.com/yegors/stdatmo/internal/observability"
	"github.com/yegors/stdatmo/internal/websocket"
	"github.com/yegors/stdatmo/pkg/logger"
)

// Router wires the API handlers into a chi mux
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new API router. metrics may be nil.
func NewRouter(cfg *config.Config, metrics *observability.Metrics, log *logger.Logger) *Router {
	streamer := websocket.NewStreamer(
		cfg.Limits(),
		time.Duration(cfg.WebSocket.SampleIntervalMs)*time.Millisecond,
		time.Duration(cfg.WebSocket.WriteTimeoutSecs)*time.Second,
		metrics,
		log,
	)

	return &Router{
		handler: NewHandler(cfg, streamer, metrics, log),
		config:  cfg,
		logger:  log.Named("api-router"),
	}
}

// Routes returns the HTTP handler serving every endpoint
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", rt.handler.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/atmosphere", rt.handler.GetAtmosphere)
		r.Get("/gravity", rt.handler.GetGravity)
		r.Get("/layers", rt.handler.GetLayers)
		r.Get("/airdata", rt.handler.GetAirData)
		r.Get("/pressure-altitude", rt.handler.GetPressureAltitude)
		r.Get("/density-altitude", rt.handler.GetDensityAltitude)
		r.Get("/profile", rt.handler.GetProfile)
		r.Get("/profile/stream", rt.handler.StreamProfile)
	})

	if rt.config.Metrics.Enabled {
		r.Method(http.MethodGet, rt.config.Metrics.Path, promhttp.Handler())
	}

	return r
}

// requestLogger logs every request at debug level with its status and latency
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())))
	})
}
