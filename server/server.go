// Package server exposes the HTTP API: session auth, aggregated reports
// and exports, the import pipeline, and time-entry tracking endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/hourglasshq/hourglass/internal/config"
	"github.com/hourglasshq/hourglass/internal/db"
	"github.com/hourglasshq/hourglass/internal/importer"
	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the hourglass API server
type Server struct {
	db      *db.DB
	store   *store.Store
	imports *importer.Service
	cfg     *config.Config
	echo    *echo.Echo
}

// New creates a new server over an already-opened database
func New(database *db.DB, cfg *config.Config) *Server {
	st := store.New(database)
	s := &Server{
		db:      database,
		store:   st,
		imports: importer.NewService(st),
		cfg:     cfg,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request/response logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	// Organization-scoped endpoints
	org := protected.Group("/organizations/:organization")
	org.Use(s.organizationMiddleware)
	org.GET("/report", s.handleReport)
	org.GET("/report/export", s.handleReportExport)
	org.POST("/import", s.handleImport)
	org.POST("/time-entries", s.handleCreateTimeEntry)
	org.PATCH("/time-entries/:id/stop", s.handleStopTimeEntry)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// validationError renders a field-level validation failure.
func validationError(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"errors": map[string]string{field: msg},
	})
}
