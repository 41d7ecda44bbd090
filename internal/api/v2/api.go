// Package api implements the v2 HTTP API: plant identification search,
// the task dashboard, the yearly calendar and task action logging.
package api

import (
	"context"
	"crypto/rand"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gardenkeep/gardenkeep-go/internal/conf"
	"github.com/gardenkeep/gardenkeep-go/internal/datastore"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// Identifier resolves a free-text plant query. Satisfied by the
// identification pipeline.
type Identifier interface {
	Identify(ctx context.Context, query string) model.SearchResponse
}

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	identifier Identifier

	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error

	// now supplies the reference time for scheduling computations.
	// Swappable in tests.
	now func() time.Time
}

// New creates a v2 API controller and registers its routes on e.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, identifier Identifier) *Controller {
	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		identifier: identifier,
		now:        time.Now,
	}

	c.apiLevelVar = new(slog.LevelVar)
	if settings.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	} else {
		c.apiLevelVar.Set(slog.LevelInfo)
	}

	logFilePath := filepath.Join("logs", "api.log")
	var err error
	c.apiLogger, c.apiLoggerClose, err = logging.NewFileLogger(logFilePath, "api", c.apiLevelVar)
	if err != nil {
		log.Printf("Failed to initialize API file logger at %s: %v. API logging disabled.", logFilePath, err)
		c.apiLogger = nil
		c.apiLoggerClose = func() error { return nil }
	}

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.initRoutes()

	return c
}

func (c *Controller) initRoutes() {
	c.Group.POST("/plants/search", c.SearchPlants)
	c.Group.GET("/tasks", c.GetDashboardTasks)
	c.Group.GET("/tasks/calendar", c.GetTaskCalendar)
	c.Group.POST("/tasks/action", c.RecordTaskAction)
	c.Group.GET("/profiles", c.GetProfiles)
	c.Group.PUT("/profiles/:ownerId", c.SaveProfile)
	c.Group.DELETE("/profiles/:ownerId", c.DeleteProfile)
	c.Group.GET("/health", c.HealthCheck)
}

// Shutdown closes the controller's log file.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			log.Printf("Failed to close API log file: %v", err)
		}
	}
}

// HealthCheck returns a simple liveness response.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// ErrorResponse is the API error shape.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response with a correlation ID
// for tracking.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	if c.apiLogger != nil {
		errorStr := message
		if err != nil {
			errorStr = err.Error()
		}
		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ctx.RealIP(),
		)
	}

	return ctx.JSON(code, errorResp)
}
