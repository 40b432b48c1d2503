package api

// Read-only HTTP access to the rendered chart for dashboards and scripts.

import (
	"context"
	"errors"
	"net/http"
	"time"

	logging "elpris/internal/infra/log"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options configures the HTTP server.
type Options struct {
	Addr      string
	ImagePath string
	HTMLPath  string // empty disables /elpris.html
}

// NewRouter registers all routes on a fresh gin engine.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), recovery())

	h := &handler{imagePath: opts.ImagePath, htmlPath: opts.HTMLPath}

	router.GET("/health", h.health)
	router.GET("/elpris.png", h.image)
	router.GET("/elpris.html", h.html)

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.status)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse("NOT_FOUND", "Not found"))
	})

	return router
}

// NewHandler wraps the router with CORS for GET from any origin.
func NewHandler(opts Options) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		MaxAge:         int((24 * time.Hour).Seconds()),
	}).Handler(NewRouter(opts))
}

// Serve listens on opts.Addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts Options) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.LogSuccess("HTTP server listening", zap.String("addr", opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	logging.LogInfo("HTTP server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.LogInfo("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.LogError("Panic in HTTP handler", zap.Any("recovered", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			errorResponse("INTERNAL_ERROR", "An unexpected error occurred"))
	})
}
