package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenkeep/gardenkeep-go/internal/errors"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// GetProfiles returns every stored care profile.
func (c *Controller) GetProfiles(ctx echo.Context) error {
	profiles, err := c.DS.GetAllProfiles()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load care profiles", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profiles)
}

// SaveProfile stores a regenerated care profile for one owner, replacing
// any existing profile wholesale.
func (c *Controller) SaveProfile(ctx echo.Context) error {
	ownerID := ctx.Param("ownerId")

	var profile model.CareProfile
	if err := ctx.Bind(&profile); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	profile.OwnerID = ownerID

	switch profile.OwnerType {
	case model.OwnerPlant, model.OwnerLawn:
	default:
		return c.HandleError(ctx, nil, "owner_type must be plant or lawn", http.StatusBadRequest)
	}
	if profile.OwnerName == "" {
		return c.HandleError(ctx, nil, "owner_name is required", http.StatusBadRequest)
	}
	for i := range profile.Tasks {
		task := &profile.Tasks[i]
		if task.Key == "" {
			return c.HandleError(ctx, nil, "every task needs a key", http.StatusBadRequest)
		}
		if !validMonth(task.MonthStart) || !validMonth(task.MonthEnd) {
			return c.HandleError(ctx, nil, "task months must be 1-12", http.StatusBadRequest)
		}
	}

	if err := c.DS.SaveProfile(&profile); err != nil {
		return c.HandleError(ctx, err, "Failed to save care profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}

// DeleteProfile removes an owner's profile and action history.
func (c *Controller) DeleteProfile(ctx echo.Context) error {
	ownerID := ctx.Param("ownerId")

	if _, err := c.DS.GetProfile(ownerID); err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			return c.HandleError(ctx, err, "Unknown owner", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load care profile", http.StatusInternalServerError)
	}

	if err := c.DS.DeleteProfile(ownerID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete care profile", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}
