package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, NewHandler(Options{}), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestImage_NotRenderedYet(t *testing.T) {
	h := NewHandler(Options{ImagePath: filepath.Join(t.TempDir(), "elpris.png")})

	w := get(t, h, "/elpris.png")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_RENDERED", resp.Error.Code)

	w = get(t, h, "/api/v1/status")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageAndStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elpris.png")
	payload := []byte("\x89PNG fake image")
	require.NoError(t, os.WriteFile(path, payload, 0644))

	h := NewHandler(Options{ImagePath: path})

	w := get(t, h, "/elpris.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, payload, w.Body.Bytes())

	w = get(t, h, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Path      string `json:"path"`
		SizeBytes int64  `json:"size_bytes"`
		UpdatedAt string `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, path, status.Path)
	assert.Equal(t, int64(len(payload)), status.SizeBytes)
	assert.NotEmpty(t, status.UpdatedAt)
}

func TestHTML(t *testing.T) {
	dir := t.TempDir()

	w := get(t, NewHandler(Options{ImagePath: filepath.Join(dir, "elpris.png")}), "/elpris.html")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "HTML_DISABLED")

	htmlPath := filepath.Join(dir, "elpris.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0644))
	w = get(t, NewHandler(Options{HTMLPath: htmlPath}), "/elpris.html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestCORS(t *testing.T) {
	w := get(t, NewHandler(Options{}), "/health", "Origin", "https://dashboard.example")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoRoute(t *testing.T) {
	w := get(t, NewHandler(Options{}), "/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
