package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinylapi/internal/testutil"
)

func TestLoginHandler(t *testing.T) {
	handler := NewAuthHandler(testutil.NewTestGate())

	t.Run("issues a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/admin/login", map[string]string{
			"email":    testutil.TestAdminEmail,
			"password": testutil.TestPassword,
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]any)
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, testutil.TestAdminEmail, data["email"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/admin/login", map[string]string{
			"email":    testutil.TestAdminEmail,
			"password": "wrong",
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		errBody := resp.Body["error"].(map[string]any)
		assert.Equal(t, "INVALID_CREDENTIALS", errBody["code"])
	})

	t.Run("validates payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/admin/login", map[string]string{
			"email": "not-an-email",
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestAccessHandler(t *testing.T) {
	gate := testutil.NewTestGate()
	protected := AuthMiddleware(gate)(http.HandlerFunc(NewAuthHandler(gate).Access))

	t.Run("allowed with valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequestWithAuth(http.MethodGet, "/admin/access", nil, testutil.GenerateTestToken())
		protected.ServeHTTP(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]any)
		assert.Equal(t, true, data["allowed"])
		assert.Equal(t, testutil.TestAdminEmail, data["email"])
	})

	t.Run("rejected without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, testutil.NewRequest(http.MethodGet, "/admin/access", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejected with expired token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := testutil.NewRequestWithAuth(http.MethodGet, "/admin/access", nil, testutil.GenerateExpiredToken())
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
