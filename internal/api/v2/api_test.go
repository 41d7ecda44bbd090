package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenkeep/gardenkeep-go/internal/conf"
	"github.com/gardenkeep/gardenkeep-go/internal/datastore"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// stubIdentifier records the last query and returns a canned response.
type stubIdentifier struct {
	lastQuery string
	calls     int
	response  model.SearchResponse
}

func (s *stubIdentifier) Identify(_ context.Context, query string) model.SearchResponse {
	s.calls++
	s.lastQuery = query
	return s.response
}

var testRefTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) (*Controller, *stubIdentifier) {
	t.Helper()

	store := datastore.New(&conf.Settings{
		Database: conf.DatabaseSettings{Path: ":memory:"},
	})
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	identifier := &stubIdentifier{}
	controller := New(echo.New(), store, &conf.Settings{}, identifier)
	controller.now = func() time.Time { return testRefTime }
	t.Cleanup(controller.Shutdown)

	return controller, identifier
}

func doRequest(c *Controller, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func seedProfile(t *testing.T, c *Controller, ownerID string, ownerType model.OwnerType, tasks ...model.CareTask) {
	t.Helper()
	require.NoError(t, c.DS.SaveProfile(&model.CareProfile{
		OwnerID:   ownerID,
		OwnerType: ownerType,
		OwnerName: strings.ToUpper(ownerID[:1]) + ownerID[1:],
		Tasks:     tasks,
	}))
}

func TestHealthCheck(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/v2/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSearchPlants(t *testing.T) {
	t.Run("valid_query", func(t *testing.T) {
		controller, identifier := newTestController(t)
		identifier.response = model.SearchResponse{
			Results: []model.PlantSearchResult{{CommonName: "Lavender", Source: model.SourceCatalog}},
			Source:  model.SourceCatalog,
		}

		rec := doRequest(controller, http.MethodPost, "/api/v2/plants/search", `{"query": "  Lavender  "}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Lavender", identifier.lastQuery, "query is trimmed before the pipeline")

		var resp model.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Lavender", resp.Results[0].CommonName)
	})

	t.Run("too_short_query_rejected", func(t *testing.T) {
		controller, identifier := newTestController(t)

		rec := doRequest(controller, http.MethodPost, "/api/v2/plants/search", `{"query": " L "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, identifier.calls, "pipeline must not run for invalid queries")
	})

	t.Run("invalid_body", func(t *testing.T) {
		controller, _ := newTestController(t)

		rec := doRequest(controller, http.MethodPost, "/api/v2/plants/search", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetDashboardTasks(t *testing.T) {
	controller, _ := newTestController(t)

	// June reference month: the watering task opens in June (this_week),
	// the feeding task's window opened in May (next_two_weeks).
	seedProfile(t, controller, "plant-1", model.OwnerPlant,
		model.CareTask{Key: "water", Category: model.CategoryWatering, Title: "Water",
			MonthStart: 6, MonthEnd: 8, Recurrence: model.WeeklyInWindow, Effort: model.EffortLow},
		model.CareTask{Key: "feed", Category: model.CategoryFeeding, Title: "Feed",
			MonthStart: 5, MonthEnd: 7, Recurrence: model.MonthlyInWindow, Effort: model.EffortHigh},
		model.CareTask{Key: "prune", Category: model.CategoryPruning, Title: "Prune",
			MonthStart: 2, MonthEnd: 3, Recurrence: model.OncePerWindow, Effort: model.EffortHigh},
	)

	// A recent completion suppresses the weekly task for 7 days.
	require.NoError(t, controller.DS.SaveAction(&model.ActionRecord{
		OwnerID:   "plant-1",
		TaskKey:   "water",
		Action:    model.ActionDone,
		CreatedAt: testRefTime.AddDate(0, 0, -2),
	}))

	rec := doRequest(controller, http.MethodGet, "/api/v2/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.ReferenceMonth)
	require.Len(t, resp.Tasks, 1, "out-of-window and suppressed tasks are excluded")
	assert.Equal(t, "feed", resp.Tasks[0].Task.Key)
	assert.Equal(t, "next_two_weeks", string(resp.Tasks[0].Bucket))
}

func TestGetTaskCalendar(t *testing.T) {
	controller, _ := newTestController(t)

	seedProfile(t, controller, "plant-1", model.OwnerPlant,
		model.CareTask{Key: "mulch", Category: model.CategoryMulching, Title: "Mulch",
			MonthStart: 11, MonthEnd: 2, Recurrence: model.OncePerWindow, Effort: model.EffortMedium},
	)

	rec := doRequest(controller, http.MethodGet, "/api/v2/tasks/calendar", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CalendarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, month := range []int{11, 12, 1, 2} {
		assert.Len(t, resp.Months[month], 1, "wrapped window spans month %d", month)
	}
	assert.Empty(t, resp.Months[6])
}

func TestRecordTaskAction(t *testing.T) {
	taskDef := model.CareTask{Key: "prune", Category: model.CategoryPruning, Title: "Prune",
		MonthStart: 3, MonthEnd: 4, Recurrence: model.OncePerWindow, Effort: model.EffortMedium}

	t.Run("done_recorded", func(t *testing.T) {
		controller, _ := newTestController(t)
		seedProfile(t, controller, "plant-1", model.OwnerPlant, taskDef)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "plant-1", "task_key": "prune", "action": "done"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var record model.ActionRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, model.ActionDone, record.Action)

		history, err := controller.DS.GetActionsForOwner("plant-1")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("snooze_requires_until", func(t *testing.T) {
		controller, _ := newTestController(t)
		seedProfile(t, controller, "plant-1", model.OwnerPlant, taskDef)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "plant-1", "task_key": "prune", "action": "snoozed"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("snooze_with_until", func(t *testing.T) {
		controller, _ := newTestController(t)
		seedProfile(t, controller, "plant-1", model.OwnerPlant, taskDef)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "plant-1", "task_key": "prune", "action": "snoozed", "snooze_until": "2025-07-01T00:00:00Z"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var record model.ActionRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		require.NotNil(t, record.SnoozeUntil)
	})

	t.Run("invalid_action_rejected", func(t *testing.T) {
		controller, _ := newTestController(t)
		seedProfile(t, controller, "plant-1", model.OwnerPlant, taskDef)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "plant-1", "task_key": "prune", "action": "postponed"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown_owner", func(t *testing.T) {
		controller, _ := newTestController(t)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "ghost", "task_key": "prune", "action": "done"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown_task_key", func(t *testing.T) {
		controller, _ := newTestController(t)
		seedProfile(t, controller, "plant-1", model.OwnerPlant, taskDef)

		rec := doRequest(controller, http.MethodPost, "/api/v2/tasks/action",
			`{"owner_id": "plant-1", "task_key": "nope", "action": "done"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	controller, _ := newTestController(t)

	body := `{
		"owner_type": "lawn",
		"owner_name": "Back Lawn",
		"summary": "Shaded lawn, moss prone",
		"tasks": [
			{"key": "mow", "category": "mowing", "title": "Mow weekly",
			 "month_start": 4, "month_end": 9,
			 "recurrence_type": "weekly_in_window", "effort_level": "medium"}
		]
	}`
	rec := doRequest(controller, http.MethodPut, "/api/v2/profiles/lawn-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(controller, http.MethodGet, "/api/v2/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []model.CareProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "lawn-1", profiles[0].OwnerID)
	assert.Equal(t, model.OwnerLawn, profiles[0].OwnerType)

	rec = doRequest(controller, http.MethodDelete, "/api/v2/profiles/lawn-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(controller, http.MethodDelete, "/api/v2/profiles/lawn-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveProfileValidation(t *testing.T) {
	controller, _ := newTestController(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad_owner_type", `{"owner_type": "tree", "owner_name": "Oak", "tasks": []}`},
		{"missing_name", `{"owner_type": "plant", "tasks": []}`},
		{"task_without_key", `{"owner_type": "plant", "owner_name": "Oak",
			"tasks": [{"title": "X", "month_start": 1, "month_end": 2}]}`},
		{"month_out_of_range", `{"owner_type": "plant", "owner_name": "Oak",
			"tasks": [{"key": "x", "title": "X", "month_start": 0, "month_end": 13}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(controller, http.MethodPut, "/api/v2/profiles/plant-9", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
