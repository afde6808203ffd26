package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vinylapi/internal/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	protected := AuthMiddleware(testutil.NewTestGate())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testutil.TestAdminEmail, EmailFrom(r))
		assert.Equal(t, "ADMIN", RoleFrom(r))
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes claims through", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequestWithAuth(http.MethodGet, "/admin/records", nil, testutil.GenerateTestToken())
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/admin/records", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/admin/records", nil)
		r.Header.Set("Authorization", "Token abc")
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	wrapped := CORSMiddleware([]string{"https://vinyls.example.com"})(okHandler())

	t.Run("allowed origin gets headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/catalog", nil)
		r.Header.Set("Origin", "https://vinyls.example.com")
		wrapped.ServeHTTP(w, r)

		assert.Equal(t, "https://vinyls.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets none", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/catalog", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		wrapped.ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodOptions, "/catalog", nil)
		r.Header.Set("Origin", "https://vinyls.example.com")
		wrapped.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	wrapped := SecurityHeadersMiddleware(okHandler())
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/catalog", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	wrapped := RequestSizeLimitMiddleware(16)(okHandler())

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin/records", strings.NewReader("tiny"))
		wrapped.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin/records", strings.NewReader(strings.Repeat("x", 64)))
		wrapped.ServeHTTP(w, r)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestMethodMux(t *testing.T) {
	mux := MethodMux(map[string]http.Handler{
		http.MethodGet: okHandler(),
	})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/admin/records", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.NewRequest(http.MethodPut, "/admin/records", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimitMiddleware(1, 2)
	wrapped := rl.Middleware(okHandler())

	send := func() int {
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/catalog/search?q=nirvana", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		wrapped.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRateLimitClientKey(t *testing.T) {
	t.Run("reconnects from new ports share a bucket", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, 1)
		wrapped := rl.Middleware(okHandler())

		send := func(remoteAddr string) int {
			w := httptest.NewRecorder()
			r := testutil.NewRequest(http.MethodGet, "/catalog", nil)
			r.RemoteAddr = remoteAddr
			wrapped.ServeHTTP(w, r)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, send("10.0.0.1:1111"))
		assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:2222"))
		assert.Equal(t, http.StatusOK, send("10.0.0.2:1111"))
	})

	t.Run("forwarded header uses the first hop only", func(t *testing.T) {
		r := testutil.NewRequest(http.MethodGet, "/catalog", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", clientKey(r))
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id when the caller sends none", func(t *testing.T) {
		var seen string
		wrapped := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r)
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/catalog", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-Id"))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		wrapped := RequestIDMiddleware(okHandler())
		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/catalog", nil)
		r.Header.Set("X-Request-Id", "trace-42")
		wrapped.ServeHTTP(w, r)

		assert.Equal(t, "trace-42", w.Header().Get("X-Request-Id"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("panic becomes a 500 envelope", func(t *testing.T) {
		wrapped := AccessLogMiddleware(RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("snapshot corrupted")
		})))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/catalog", nil))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		errBody := resp.Body["error"].(map[string]any)
		assert.Equal(t, "INTERNAL_ERROR", errBody["code"])
	})

	t.Run("panic after a write leaves the sent status", func(t *testing.T) {
		wrapped := AccessLogMiddleware(RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("late failure")
		})))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/catalog", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestAccessLogRecorder(t *testing.T) {
	wrapped := AccessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/catalog", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}
