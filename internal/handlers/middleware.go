package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type responseWriter struct {
	http.ResponseWriter
	body   *bytes.Buffer
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status >= http.StatusBadRequest {
		rw.body.Write(b)
	}

	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// логирует каждый запрос; для ответов с ошибкой добавляет тело ответа
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}

		next.ServeHTTP(rw, r)

		attrs := []any{
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rw.status,
			"size", rw.size,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}

		if rw.status >= http.StatusBadRequest {
			slog.Error("request completed", append(attrs, "response_body", rw.body.String())...)
			return
		}
		slog.Info("request completed", attrs...)
	})
}
