package datastore

import (
	"time"

	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// Profile is the stored form of a care profile. Tasks are kept as a JSON
// column because a profile is always regenerated and read wholesale,
// never queried task by task.
type Profile struct {
	ID        uint             `gorm:"primaryKey"`
	OwnerID   string           `gorm:"uniqueIndex;not null"`
	OwnerType string           `gorm:"index;not null"`
	OwnerName string           `gorm:"not null"`
	Summary   string
	Tips      string
	Tasks     []model.CareTask `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Action is one stored user response to a care task. Rows are append-only.
type Action struct {
	ID          string `gorm:"primaryKey"`
	OwnerID     string `gorm:"index:idx_actions_owner_task;not null"`
	TaskKey     string `gorm:"index:idx_actions_owner_task;not null"`
	Action      string `gorm:"not null"`
	SnoozeUntil *time.Time
	CreatedAt   time.Time `gorm:"index"`
}

func profileRecord(p *model.CareProfile) Profile {
	return Profile{
		OwnerID:   p.OwnerID,
		OwnerType: string(p.OwnerType),
		OwnerName: p.OwnerName,
		Summary:   p.Summary,
		Tips:      p.Tips,
		Tasks:     p.Tasks,
	}
}

func (p *Profile) toModel() model.CareProfile {
	return model.CareProfile{
		OwnerID:   p.OwnerID,
		OwnerType: model.OwnerType(p.OwnerType),
		OwnerName: p.OwnerName,
		Summary:   p.Summary,
		Tips:      p.Tips,
		Tasks:     p.Tasks,
	}
}

func actionRecord(a *model.ActionRecord) Action {
	return Action{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		TaskKey:     a.TaskKey,
		Action:      string(a.Action),
		SnoozeUntil: a.SnoozeUntil,
		CreatedAt:   a.CreatedAt,
	}
}

func (a *Action) toModel() model.ActionRecord {
	return model.ActionRecord{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		TaskKey:     a.TaskKey,
		Action:      model.ActionType(a.Action),
		SnoozeUntil: a.SnoozeUntil,
		CreatedAt:   a.CreatedAt,
	}
}
