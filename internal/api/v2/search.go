package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SearchRequest is the body for POST /api/v2/plants/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchPlants runs the identification pipeline for a free-text query.
// Queries shorter than two characters after trimming are rejected here;
// the pipeline itself assumes validated input.
func (c *Controller) SearchPlants(ctx echo.Context) error {
	var req SearchRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) < 2 {
		return c.HandleError(ctx, nil, "Query must be at least 2 characters", http.StatusBadRequest)
	}

	if c.apiLogger != nil {
		c.apiLogger.Info("plant search requested", "query", query, "ip", ctx.RealIP())
	}

	resp := c.identifier.Identify(ctx.Request().Context(), query)
	return ctx.JSON(http.StatusOK, resp)
}
