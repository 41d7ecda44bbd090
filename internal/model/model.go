// Package model defines the core GardenKeep domain types shared between the
// scheduling engine, the identification pipeline and the API layer.
package model

import "time"

// TaskCategory tags a care task with the kind of work it involves.
// Plant and lawn profiles draw from slightly different subsets but share
// the same shape.
type TaskCategory string

const (
	CategoryPruning     TaskCategory = "pruning"
	CategoryFeeding     TaskCategory = "feeding"
	CategoryPestControl TaskCategory = "pest_control"
	CategoryWatering    TaskCategory = "watering"
	CategoryWeeding     TaskCategory = "weeding"
	CategoryMulching    TaskCategory = "mulching"
	CategoryPlanting    TaskCategory = "planting"
	// Lawn-specific categories
	CategoryMowing        TaskCategory = "mowing"
	CategoryAeration      TaskCategory = "aeration"
	CategoryScarification TaskCategory = "scarification"
	CategoryOverseeding   TaskCategory = "overseeding"
)

// RecurrenceType controls how often a task resurfaces within its month
// window after being actioned.
type RecurrenceType string

const (
	OncePerWindow       RecurrenceType = "once_per_window"
	WeeklyInWindow      RecurrenceType = "weekly_in_window"
	FortnightlyInWindow RecurrenceType = "fortnightly_in_window"
	MonthlyInWindow     RecurrenceType = "monthly_in_window"
)

// EffortLevel is the rough amount of work a task takes.
type EffortLevel string

const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// CareTask is a single seasonal or recurring care action definition.
// MonthStart and MonthEnd are 1-12 inclusive and may wrap the year end
// (start=11, end=2 spans Nov through Feb). Equal values mean a
// single-month window.
type CareTask struct {
	Key        string         `json:"key"`
	Category   TaskCategory   `json:"category"`
	Title      string         `json:"title"`
	Rationale  string         `json:"rationale,omitempty"`
	HowTo      string         `json:"how_to,omitempty"`
	MonthStart int            `json:"month_start"`
	MonthEnd   int            `json:"month_end"`
	Recurrence RecurrenceType `json:"recurrence_type"`
	Effort     EffortLevel    `json:"effort_level"`
}

// OwnerType distinguishes the entity a care profile belongs to.
type OwnerType string

const (
	OwnerPlant OwnerType = "plant"
	OwnerLawn  OwnerType = "lawn"
)

// CareProfile is the AI-generated care plan owned by a plant or lawn.
// Profiles are regenerated wholesale, never partially patched.
type CareProfile struct {
	OwnerID   string     `json:"owner_id"`
	OwnerType OwnerType  `json:"owner_type"`
	OwnerName string     `json:"owner_name"`
	Summary   string     `json:"summary,omitempty"`
	Tips      string     `json:"tips,omitempty"`
	Tasks     []CareTask `json:"tasks"`
}

// ActionType is a logged user response to a care task.
type ActionType string

const (
	ActionDone    ActionType = "done"
	ActionSkipped ActionType = "skipped"
	ActionSnoozed ActionType = "snoozed"
)

// ActionRecord is one user action against a task. Records are append-only;
// only the most recent record per (owner, task key) drives suppression,
// older ones are kept for history display.
type ActionRecord struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	TaskKey     string     `json:"task_key"`
	Action      ActionType `json:"action"`
	SnoozeUntil *time.Time `json:"snooze_until,omitempty"` // Set only when Action is snoozed
	CreatedAt   time.Time  `json:"created_at"`
}
