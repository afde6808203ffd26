package http

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

const requestIDKey contextKey = "request_id"

// RequestIDMiddleware tags every request with an id, reusing the caller's
// X-Request-Id when present so a browser session can be traced across the
// public and admin surfaces.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id, or "" outside the middleware.
func RequestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// statusRecorder remembers what was sent so the access log and the panic
// recovery can tell whether a response already went out.
type statusRecorder struct {
	http.ResponseWriter
	status        int
	bytesWritten  int64
	headerWritten bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.headerWritten {
		sr.status = code
		sr.headerWritten = true
		sr.ResponseWriter.WriteHeader(code)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.headerWritten {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytesWritten += int64(n)
	return n, err
}

// AccessLogMiddleware logs one line per request: method, path, status,
// duration and the request id.
func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		log.Printf("access method=%s path=%s status=%d bytes=%d duration_ms=%d request_id=%s",
			r.Method,
			r.URL.Path,
			sr.status,
			sr.bytesWritten,
			time.Since(start).Milliseconds(),
			RequestIDFrom(r),
		)
	})
}

// RecoveryMiddleware turns a handler panic into a 500 envelope instead of
// a dropped connection. If the handler already started writing, the
// response is left as is; the panic is logged either way.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: request_id=%s path=%s error=%v stack=%s",
					RequestIDFrom(r), r.URL.Path, err, debug.Stack())

				var wroteHeader bool
				if sr, ok := w.(*statusRecorder); ok {
					wroteHeader = sr.headerWritten
				}
				if !wroteHeader {
					JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
