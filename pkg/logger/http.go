package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// HTTPMiddleware attaches a request-scoped logger to the context and logs
// every completed request.
func HTTPMiddleware(base interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := base.WithFields(
				interfaces.String("request_id", middleware.GetReqID(r.Context())),
				interfaces.String("method", r.Method),
				interfaces.String("path", r.URL.Path),
			)
			ctx := WithContext(r.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []interfaces.Field{
				interfaces.Int("status", status),
				interfaces.Int("bytes", ww.BytesWritten()),
				interfaces.Duration("duration", time.Since(start)),
			}
			if status >= http.StatusInternalServerError {
				reqLogger.Error("HTTP request failed", fields...)
				return
			}
			reqLogger.Info("HTTP request completed", fields...)
		})
	}
}
