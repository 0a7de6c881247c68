package middlewarectx_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/jwt"
	"github.com/bookease/bookease-backend/internal/metrics"
)

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) Identity(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.Claims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(m *TokenParserMock)
		wantStatusCode int
		wantError      string
		wantCalled     bool
	}{
		{
			name:       "missing Authorization header",
			authHeader: "",
			setupMock: func(m *TokenParserMock) {
				m.On("Identity", "").Return(nil, apperr.Auth("No token provided")).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "No token provided",
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			setupMock: func(m *TokenParserMock) {
				m.On("Identity", "").Return(nil, apperr.Auth("No token provided")).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "No token provided",
		},
		{
			name:       "invalid token",
			authHeader: "Bearer forged",
			setupMock: func(m *TokenParserMock) {
				m.On("Identity", "forged").Return(nil, apperr.Auth("Invalid or expired token")).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid or expired token",
		},
		{
			name:       "valid token",
			authHeader: "bearer good",
			setupMock: func(m *TokenParserMock) {
				m.On("Identity", "good").Return(&jwt.Claims{AccountID: "acc-1", Email: "asha@example.com"}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(TokenParserMock)
			tt.setupMock(parser)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := middlewarectx.AccountIDFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "acc-1", id)
				assert.Equal(t, "asha@example.com", middlewarectx.EmailFrom(r.Context()))
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.JWTMiddleware(parser, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantError != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, false, body["ok"])
				assert.Equal(t, tt.wantError, body["error"])
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestJWTMiddleware_UnexpectedError(t *testing.T) {
	parser := new(TokenParserMock)
	parser.On("Identity", "tok").Return(nil, errors.New("boom")).Once()
	h := middlewarectx.JWTMiddleware(parser, newNoopLogger())(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAccountIDFrom_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middlewarectx.AccountIDFrom(req.Context())
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := middlewarectx.NewIPLimiter(1, 2)
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/signin", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:3333"))
	// другой клиент не страдает
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1111"))
}

func TestCORS(t *testing.T) {
	h := middlewarectx.CORS("http://localhost:3000")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecureHeaders(t *testing.T) {
	h := middlewarectx.SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(middlewarectx.Metrics(m))
	r.Get("/api/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	})

	for _, id := range []string{"1", "2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/things/"+id, nil))
		require.Equal(t, http.StatusAccepted, rr.Code)
	}

	expected := `
# HELP bookease_http_requests_total HTTP requests by route, method and status code.
# TYPE bookease_http_requests_total counter
bookease_http_requests_total{code="202",method="GET",route="/api/things/{id}"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "bookease_http_requests_total"))
}
