package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAppHandler_Health(t *testing.T) {
	e := echo.New()
	h := NewAppHandler(nil)
	e.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAppHandler_QuitCallsStop(t *testing.T) {
	stopped := 0
	e := echo.New()
	h := NewAppHandler(func() { stopped++ })
	e.POST("/quit", h.Quit)

	req := httptest.NewRequest(http.MethodPost, "/quit", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stopped)
	assert.Contains(t, rec.Body.String(), "The uploader has stopped")
}
