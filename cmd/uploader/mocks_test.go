package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/damacus/bucket-drop/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore implements services.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, in services.PutObjectInput) (services.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return services.PutObjectOutput{}, err
	}
	args := m.Called(ctx, in.Bucket, in.Key, in.Size, in.ContentType, string(data))
	return args.Get(0).(services.PutObjectOutput), args.Error(1)
}

// MockPicker implements services.FilePicker for testing
type MockPicker struct {
	mock.Mock
}

func (m *MockPicker) Choose(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// iconServer serves the same PNG for every path and records the paths
type iconServer struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
}

func newIconServer(t *testing.T) *iconServer {
	t.Helper()
	body := encodePNG(t, 256, 256)
	s := &iconServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *iconServer) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 160, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// localRequest builds a request that passes LocalOnly
func localRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "127.0.0.1:50123"
	req.Host = "127.0.0.1:8765"
	return req
}

// session drives the server the way the page does: it loads / for the CSRF
// cookie, then sends htmx form posts carrying the token.
type session struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func newSession(t *testing.T, e *echo.Echo) *session {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, localRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	s := &session{t: t, e: e}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf" {
			s.cookie = c
		}
	}
	require.NotNil(t, s.cookie, "csrf cookie")
	return s
}

func (s *session) post(path string, values url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	req := localRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", s.cookie.Value)
	req.AddCookie(s.cookie)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func httptestGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, localRequest(http.MethodGet, target, nil))
	return rec
}
