package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"vinylapi/internal/auth"
	"vinylapi/internal/catalog"
)

// TestSecret signs session tokens in handler tests.
const TestSecret = "test-secret"

// TestAdminEmail is allowlisted by NewTestGate.
const TestAdminEmail = "admin@example.com"

// TestPassword is the plain password behind NewTestGate's credential.
const TestPassword = "hunter2hunter2"

// NewTestGate builds a gate with one allowlisted admin.
func NewTestGate() *auth.Gate {
	hash, _ := auth.HashPassword(TestPassword)
	return auth.NewGate(TestSecret, time.Hour,
		[]auth.Credential{{Email: TestAdminEmail, PasswordHash: hash}},
		[]string{TestAdminEmail},
	)
}

// GenerateTestToken issues a token for the test admin.
func GenerateTestToken() string {
	token, _ := auth.GenerateToken(TestSecret, TestAdminEmail, time.Hour)
	return token
}

// GenerateExpiredToken issues a token that is already expired.
func GenerateExpiredToken() string {
	token, _ := auth.GenerateToken(TestSecret, TestAdminEmail, -time.Hour)
	return token
}

// SampleRawRecords is a small record set covering the interesting
// normalization shapes.
func SampleRawRecords() []catalog.RawRecord {
	return []catalog.RawRecord{
		{ID: "rec1", Fields: map[string]any{
			"Album Name": "Nevermind",
			"Artist":     "Nirvana",
			"Album Year": "1991",
			"Status":     "Lo tengo",
			"Rating":     float64(5),
		}},
		{ID: "rec2", Fields: map[string]any{
			"Album Name": "Wish",
			"Artist":     "The Cure",
			"Album Year": "1992",
			"Status":     "Wishlist",
			"Gender":     []any{"Rock", "Post-punk"},
		}},
	}
}

// NewRequest creates a JSON request for handler tests.
func NewRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a JSON request carrying a bearer token.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordedResponse is a decoded handler response.
type RecordedResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse decodes a recorder into a RecordedResponse.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordedResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordedResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
