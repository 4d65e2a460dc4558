package middleware

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"

	"POSTS_BACK-END/internal/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
	})
}

// RequestLogger logs one line per request. It must run inside RequestID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.Printf("%s %s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, m.Code, m.Written, m.Duration, utils.RequestIDFromContext(r.Context()))
	})
}
