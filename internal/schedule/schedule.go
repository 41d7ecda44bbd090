package schedule

import (
	"slices"
	"time"

	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// Owner identifies the plant or lawn a scheduled task belongs to.
type Owner struct {
	ID   string          `json:"id"`
	Type model.OwnerType `json:"type"`
	Name string          `json:"name"`
}

// ScheduledTask is an active task surfaced for the reference month,
// together with its owner and the action record that was consulted.
type ScheduledTask struct {
	Task       model.CareTask      `json:"task"`
	Owner      Owner               `json:"owner"`
	LastAction *model.ActionRecord `json:"last_action,omitempty"`
}

// DueBucket is the coarse dashboard urgency bucket. Tasks carry month
// granularity only, so bucketing is a display heuristic rather than a
// precise due-date computation.
type DueBucket string

const (
	BucketThisWeek     DueBucket = "this_week"
	BucketNextTwoWeeks DueBucket = "next_two_weeks"
	BucketLater        DueBucket = "later"
)

var bucketRank = map[DueBucket]int{
	BucketThisWeek:     0,
	BucketNextTwoWeeks: 1,
	BucketLater:        2,
}

var effortRank = map[model.EffortLevel]int{
	model.EffortHigh:   0,
	model.EffortMedium: 1,
	model.EffortLow:    2,
}

// ComputeActiveTasks returns the active task set for the reference month:
// every profile task whose window contains refMonth and that is not
// suppressed by its owner's most recent matching action record. Profiles
// with no tasks contribute nothing. The result preserves profile order
// and task order within each profile.
func ComputeActiveTasks(profiles []model.CareProfile, history []model.ActionRecord, refMonth int, refTime time.Time) []ScheduledTask {
	latest := latestActions(history)

	var active []ScheduledTask
	for i := range profiles {
		profile := &profiles[i]
		owner := Owner{ID: profile.OwnerID, Type: profile.OwnerType, Name: profile.OwnerName}
		for j := range profile.Tasks {
			task := &profile.Tasks[j]
			if !InWindow(task.MonthStart, task.MonthEnd, refMonth) {
				continue
			}
			last := latest[actionKey{ownerID: profile.OwnerID, taskKey: task.Key}]
			if IsSuppressed(task, last, refTime) {
				continue
			}
			active = append(active, ScheduledTask{Task: *task, Owner: owner, LastAction: last})
		}
	}
	return active
}

// Bucket assigns a scheduled task to its dashboard bucket for the
// reference month: this_week when the window opens this month, otherwise
// next_two_weeks.
func Bucket(task *model.CareTask, refMonth int) DueBucket {
	if task.MonthStart == refMonth {
		return BucketThisWeek
	}
	return BucketNextTwoWeeks
}

// DashboardTask pairs a scheduled task with its bucket.
type DashboardTask struct {
	ScheduledTask
	Bucket DueBucket `json:"due_bucket"`
}

// DashboardTasks orders the active set for dashboard display: bucket
// ascending (this_week first), then effort high to low. The sort is
// stable, so ties keep the active set's order.
func DashboardTasks(active []ScheduledTask, refMonth int) []DashboardTask {
	out := make([]DashboardTask, 0, len(active))
	for i := range active {
		out = append(out, DashboardTask{
			ScheduledTask: active[i],
			Bucket:        Bucket(&active[i].Task, refMonth),
		})
	}
	slices.SortStableFunc(out, func(a, b DashboardTask) int {
		if d := bucketRank[a.Bucket] - bucketRank[b.Bucket]; d != 0 {
			return d
		}
		return effortRank[a.Task.Effort] - effortRank[b.Task.Effort]
	})
	return out
}

// CalendarIndex builds the month-to-tasks index for a 12-month calendar
// view. Every task is exploded across each month its window spans,
// independent of the active/suppressed status used on the dashboard.
func CalendarIndex(profiles []model.CareProfile) map[int][]ScheduledTask {
	index := make(map[int][]ScheduledTask)
	for i := range profiles {
		profile := &profiles[i]
		owner := Owner{ID: profile.OwnerID, Type: profile.OwnerType, Name: profile.OwnerName}
		for j := range profile.Tasks {
			task := &profile.Tasks[j]
			for _, month := range WindowMonths(task.MonthStart, task.MonthEnd) {
				index[month] = append(index[month], ScheduledTask{Task: *task, Owner: owner})
			}
		}
	}
	return index
}

type actionKey struct {
	ownerID string
	taskKey string
}

// latestActions reduces the append-only history to the most recent record
// per owner-scoped task key.
func latestActions(history []model.ActionRecord) map[actionKey]*model.ActionRecord {
	latest := make(map[actionKey]*model.ActionRecord, len(history))
	for i := range history {
		rec := &history[i]
		key := actionKey{ownerID: rec.OwnerID, taskKey: rec.TaskKey}
		if cur, ok := latest[key]; !ok || rec.CreatedAt.After(cur.CreatedAt) {
			latest[key] = rec
		}
	}
	return latest
}
