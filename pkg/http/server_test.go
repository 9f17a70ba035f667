package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return AppErrorResponse(c, NotFoundErrorf("no %s", c.Param("id")))
		}
		if c.Param("id") == "panic" {
			panic("boom")
		}
		return SuccessResponse(c, c.Param("id"))
	})
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(pingHandler{}, WithRegistry(reg))

	cases := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/ping/abc", http.StatusOK},
		{"/ping/missing", http.StatusNotFound},
		{"/ping/panic", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
	}

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/abc", nil))
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body.Data)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/ping/:id",status="200"}`))
}

func TestServerCORS(t *testing.T) {
	s := NewServer(pingHandler{})
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, "http://example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServerHealthChecks(t *testing.T) {
	down := errors.New("connection refused")
	s := NewServer(nil,
		WithHealthCheck("cache", func(context.Context) error { return nil }),
		WithHealthCheck("archive", func(context.Context) error { return down }),
	)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Data["status"])
	assert.Equal(t, "ok", body.Data["cache"])
	assert.Equal(t, "connection refused", body.Data["archive"])
}
