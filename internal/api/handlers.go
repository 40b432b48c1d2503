package api

import (
	"errors"
	"net/http"
	"os"

	"elpris/internal/infra/fs"

	"github.com/gin-gonic/gin"
)

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

type handler struct {
	imagePath string
	htmlPath  string
}

// GET /health
func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /elpris.png
func (h *handler) image(c *gin.Context) {
	h.serveFile(c, h.imagePath, "image/png")
}

// GET /elpris.html
func (h *handler) html(c *gin.Context) {
	if h.htmlPath == "" {
		c.JSON(http.StatusNotFound, errorResponse("HTML_DISABLED", "HTML output is not configured"))
		return
	}
	h.serveFile(c, h.htmlPath, "text/html; charset=utf-8")
}

// GET /api/v1/status
func (h *handler) status(c *gin.Context) {
	info, err := fs.Stat(h.imagePath)
	if err != nil {
		writeStatError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handler) serveFile(c *gin.Context, path, contentType string) {
	if _, err := fs.Stat(path); err != nil {
		writeStatError(c, err)
		return
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "no-cache")
	c.File(path)
}

func writeStatError(c *gin.Context, err error) {
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, errorResponse("NOT_RENDERED", "Chart has not been rendered yet"))
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse("STAT_ERROR", err.Error()))
}
