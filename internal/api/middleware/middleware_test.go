package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserID = "0b6f3c2e-8f35-4c0e-9d54-2f4fba0a6a10"

func okHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUser, UserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	h := Logger(zap.NewNop())(Auth(okHandler(t, testUserID)))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: testUserID, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not a uuid", header: "alice", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/interview/progress/x", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(okHandler(t, ""))

	preflight := httptest.NewRequest(http.MethodOptions, "/interview/start", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), UserIDHeader)

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	h := Auth(rl.Handler(okHandler(t, testUserID)))

	do := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do(testUserID).Code)
	assert.Equal(t, http.StatusOK, do(testUserID).Code)

	limited := do(testUserID)
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
}
