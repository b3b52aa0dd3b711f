package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/buytown/admin-console/internal/health"
)

func check(h *health.HealthHandler) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h.Check)
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)

	// Act
	w := check(health.NewHealthHandler())

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Dependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := health.Dependency{Name: "store", Ping: func(context.Context) error { return nil }}
	down := health.Dependency{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	healthy := check(health.NewHealthHandler(ok))
	degraded := check(health.NewHealthHandler(ok, down))

	assert.Equal(t, http.StatusOK, healthy.Code)
	assert.JSONEq(t, `{"status":"ok","dependencies":{"store":"ok"}}`, healthy.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, degraded.Code)
	assert.JSONEq(t, `{"status":"degraded","dependencies":{"store":"ok","redis":"connection refused"}}`, degraded.Body.String())
}
