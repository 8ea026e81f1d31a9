package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/patternengine/internal/logger"
	"github.com/kailas-cloud/patternengine/internal/metrics"
)

// Config configures the HTTP gateway.
type Config struct {
	Auth           AuthConfig
	RequestTimeout time.Duration
	MaxInFlight    int
}

// NewRouter assembles the chi router: request-scoped logging, Prometheus
// metrics, auth, and a bounded concurrency gate in front of /classify.
func NewRouter(h *Handlers, cfg Config, log *zap.Logger) chi.Router {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 64
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(log))
	r.Use(chimw.RequestID)
	r.Use(wideEventMiddleware(log))
	r.Use(metrics.Middleware())
	r.Use(Middleware(cfg.Auth))

	r.Get("/health", h.HandleHealth)
	r.Get("/status", h.HandleStatus)
	r.Handle("/metrics", promhttp.Handler())

	classify := backpressureMiddleware(cfg.MaxInFlight)(http.HandlerFunc(h.HandleClassify))
	r.Method(http.MethodPost, "/classify", classify)
	r.Post("/reload-patterns", h.HandleReload)

	return r
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain-text stacktrace.
func jsonRecoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error("panic recovered", zap.Any("panic", rvr), zap.Stack("stacktrace"))
					writeClassifyError(w, "", "internal_error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and
// propagates X-Request-ID, carrying a request-scoped logger in context the
// way downstream handlers expect.
func wideEventMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chimw.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLog := log.With(zap.String("request_id", requestID))
			ctx := logger.ContextWithLogger(r.Context(), reqLog)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLog.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
			)
		})
	}
}

// backpressureMiddleware bounds the number of concurrent requests admitted
// to the wrapped handler. Excess requests are rejected immediately rather
// than queued, per the engine's no-unbounded-queueing backpressure policy.
func backpressureMiddleware(maxInFlight int) func(http.Handler) http.Handler {
	sem := make(chan struct{}, maxInFlight)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
			default:
				writeClassifyError(w, "", "overloaded", http.StatusServiceUnavailable)
				return
			}
			metrics.InFlightClassifications.Inc()
			defer func() {
				<-sem
				metrics.InFlightClassifications.Dec()
			}()

			next.ServeHTTP(w, r)
		})
	}
}
