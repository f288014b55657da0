package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r := gin.New()
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost} {
		r.Handle(m, "/healthz", Health)
	}

	tests := []struct {
		method         string
		expectedStatus int
		expectedBody   string
	}{
		{http.MethodGet, http.StatusOK, `{"status":"ok"}`},
		{http.MethodHead, http.StatusOK, ""},
		{http.MethodOptions, http.StatusNoContent, ""},
		{http.MethodPost, http.StatusOK, `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectedBody == "" {
				assert.Zero(t, w.Body.Len())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])
		})
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no checks",
			checks:         nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","checks":{}}`,
		},
		{
			name:           "all healthy",
			checks:         map[string]Check{"db": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","checks":{"db":"ok","redis":"ok"}}`,
		},
		{
			name:           "one dependency down",
			checks:         map[string]Check{"db": ok, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"unavailable","checks":{"db":"ok","redis":"connection refused"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/readyz", Readiness(tt.checks))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}

func TestReadiness_PassesDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	r := gin.New()
	r.GET("/readyz", Readiness(map[string]Check{
		"db": func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline)
}
