package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/litegate/internal/metrics"
	"github.com/dropDatabas3/litegate/internal/observability/logger"
)

// withRequestID asigna (o propaga) el X-Request-ID e inyecta un logger
// scoped en el contexto.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		ctx := logger.ToContext(r.Context(), logger.With(logger.RequestID(rid)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusWriter captura el status code para el access log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// withAccessLog loguea cada request con método, path, status y duración, y
// alimenta las métricas HTTP (in-flight + histograma de duración).
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		metrics.HTTPDuration.WithLabelValues(r.URL.Path, strconv.Itoa(sw.status)).Observe(elapsed.Seconds())
		logger.From(r.Context()).Debug("http request",
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(sw.status),
			logger.Duration(elapsed),
		)
	})
}
