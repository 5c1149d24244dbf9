package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/everestcap/skillforge/internal/logger"
)

// Logging emits one structured entry per request, tagged with the API
// operation so log queries can group by operation instead of raw paths
// carrying task and skill ids.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("http_request",
				zap.String("operation", operationName(r)),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", rec.status),
				zap.Int("response_bytes", rec.bytes),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// operationName maps a request to the API operation it invokes
func operationName(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/health"):
		return "health"
	case strings.HasSuffix(path, "/usage"):
		if r.Method == http.MethodPost {
			return "record_usage"
		}
		return "list_usage"
	case strings.HasPrefix(path, "/api/v1/tasks"):
		if r.Method == http.MethodPost {
			return "create_task"
		}
		return "get_task"
	case path == "/api/v1/skills":
		return "list_skills"
	case strings.HasPrefix(path, "/api/v1/skills/"):
		return "get_skill"
	case strings.HasPrefix(path, "/api/v1/overview"):
		return "get_overview"
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}
