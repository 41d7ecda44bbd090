package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gardenkeep/gardenkeep-go/internal/errors"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
	"github.com/gardenkeep/gardenkeep-go/internal/schedule"
)

// DashboardResponse is the body for GET /api/v2/tasks.
type DashboardResponse struct {
	ReferenceMonth int                      `json:"reference_month"`
	Tasks          []schedule.DashboardTask `json:"tasks"`
}

// GetDashboardTasks returns the active task set for the current month,
// bucketed and ordered for dashboard display.
func (c *Controller) GetDashboardTasks(ctx echo.Context) error {
	profiles, err := c.DS.GetAllProfiles()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load care profiles", http.StatusInternalServerError)
	}
	history, err := c.DS.GetAllActions()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load action history", http.StatusInternalServerError)
	}

	refTime := c.now()
	refMonth := int(refTime.Month())

	active := schedule.ComputeActiveTasks(profiles, history, refMonth, refTime)
	tasks := schedule.DashboardTasks(active, refMonth)

	return ctx.JSON(http.StatusOK, DashboardResponse{
		ReferenceMonth: refMonth,
		Tasks:          tasks,
	})
}

// CalendarResponse is the body for GET /api/v2/tasks/calendar.
type CalendarResponse struct {
	Months map[int][]schedule.ScheduledTask `json:"months"`
}

// GetTaskCalendar returns every task exploded across the months its
// window spans, independent of completion state.
func (c *Controller) GetTaskCalendar(ctx echo.Context) error {
	profiles, err := c.DS.GetAllProfiles()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load care profiles", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, CalendarResponse{
		Months: schedule.CalendarIndex(profiles),
	})
}

// ActionRequest is the body for POST /api/v2/tasks/action.
type ActionRequest struct {
	OwnerID     string     `json:"owner_id"`
	TaskKey     string     `json:"task_key"`
	Action      string     `json:"action"`
	SnoozeUntil *time.Time `json:"snooze_until,omitempty"`
}

// RecordTaskAction appends one done/skipped/snoozed record for a task.
func (c *Controller) RecordTaskAction(ctx echo.Context) error {
	var req ActionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if req.OwnerID == "" || req.TaskKey == "" {
		return c.HandleError(ctx, nil, "owner_id and task_key are required", http.StatusBadRequest)
	}

	action := model.ActionType(req.Action)
	switch action {
	case model.ActionDone, model.ActionSkipped, model.ActionSnoozed:
	default:
		return c.HandleError(ctx, nil, "action must be done, skipped or snoozed", http.StatusBadRequest)
	}
	if action == model.ActionSnoozed && req.SnoozeUntil == nil {
		return c.HandleError(ctx, nil, "snooze_until is required when snoozing", http.StatusBadRequest)
	}

	profile, err := c.DS.GetProfile(req.OwnerID)
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			return c.HandleError(ctx, err, "Unknown owner", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load care profile", http.StatusInternalServerError)
	}
	if !profileHasTask(&profile, req.TaskKey) {
		return c.HandleError(ctx, nil, "Unknown task key for owner", http.StatusNotFound)
	}

	record := model.ActionRecord{
		OwnerID:     req.OwnerID,
		TaskKey:     req.TaskKey,
		Action:      action,
		SnoozeUntil: req.SnoozeUntil,
		CreatedAt:   c.now(),
	}
	if err := c.DS.SaveAction(&record); err != nil {
		return c.HandleError(ctx, err, "Failed to record action", http.StatusInternalServerError)
	}

	if c.apiLogger != nil {
		c.apiLogger.Info("task action recorded",
			"owner_id", record.OwnerID,
			"task_key", record.TaskKey,
			"action", record.Action)
	}

	return ctx.JSON(http.StatusCreated, record)
}

func profileHasTask(profile *model.CareProfile, taskKey string) bool {
	for i := range profile.Tasks {
		if profile.Tasks[i].Key == taskKey {
			return true
		}
	}
	return false
}
