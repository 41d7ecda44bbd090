// Package datastore persists care profiles and the append-only action
// history behind a storage interface so callers never touch GORM directly.
package datastore

import (
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gardenkeep/gardenkeep-go/internal/errors"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// Package-level logger specific to the datastore service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "datastore.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "datastore", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize datastore file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "datastore")
		closeLogger = func() error { return nil }
	}
}

// Interface defines the storage operations the scheduling engine and the
// API layer depend on.
type Interface interface {
	Open() error
	Close() error

	SaveProfile(profile *model.CareProfile) error
	GetProfile(ownerID string) (model.CareProfile, error)
	GetAllProfiles() ([]model.CareProfile, error)
	DeleteProfile(ownerID string) error

	SaveAction(action *model.ActionRecord) error
	GetAllActions() ([]model.ActionRecord, error)
	GetActionsForOwner(ownerID string) ([]model.ActionRecord, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// SaveProfile upserts a care profile keyed by its owner. Profiles are
// regenerated wholesale, so an existing row is fully replaced.
func (ds *DataStore) SaveProfile(profile *model.CareProfile) error {
	if profile.OwnerID == "" {
		return errors.Newf("profile owner ID is required").
			Category(errors.CategoryValidation).
			Component("datastore").
			Build()
	}

	record := profileRecord(profile)

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var existing Profile
		result := tx.Where("owner_id = ?", profile.OwnerID).First(&existing)
		switch {
		case result.Error == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			return tx.Save(&record).Error
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			return tx.Create(&record).Error
		default:
			return result.Error
		}
	})
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Context("owner_id", profile.OwnerID).
			Component("datastore").
			Build()
	}

	logger.Info("profile saved", "owner_id", profile.OwnerID, "tasks", len(profile.Tasks))
	return nil
}

// GetProfile retrieves the care profile for one owner.
func (ds *DataStore) GetProfile(ownerID string) (model.CareProfile, error) {
	var record Profile
	if err := ds.DB.Where("owner_id = ?", ownerID).First(&record).Error; err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return model.CareProfile{}, errors.New(err).
			Category(category).
			Context("owner_id", ownerID).
			Component("datastore").
			Build()
	}
	return record.toModel(), nil
}

// GetAllProfiles retrieves every stored care profile.
func (ds *DataStore) GetAllProfiles() ([]model.CareProfile, error) {
	var records []Profile
	if err := ds.DB.Order("owner_id").Find(&records).Error; err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	profiles := make([]model.CareProfile, 0, len(records))
	for i := range records {
		profiles = append(profiles, records[i].toModel())
	}
	return profiles, nil
}

// DeleteProfile removes an owner's profile together with its action
// history.
func (ds *DataStore) DeleteProfile(ownerID string) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&Profile{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&Action{}).Error
	})
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Context("owner_id", ownerID).
			Component("datastore").
			Build()
	}

	logger.Info("profile deleted", "owner_id", ownerID)
	return nil
}

// SaveAction appends one action record. A missing ID or timestamp is
// filled in here so callers can pass a bare record.
func (ds *DataStore) SaveAction(action *model.ActionRecord) error {
	if action.OwnerID == "" || action.TaskKey == "" {
		return errors.Newf("action owner ID and task key are required").
			Category(errors.CategoryValidation).
			Component("datastore").
			Build()
	}
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now()
	}

	record := actionRecord(action)
	if err := ds.DB.Create(&record).Error; err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Context("owner_id", action.OwnerID).
			Context("task_key", action.TaskKey).
			Component("datastore").
			Build()
	}

	logger.Info("action recorded", "owner_id", action.OwnerID,
		"task_key", action.TaskKey, "action", action.Action)
	return nil
}

// GetAllActions returns the full action history ordered oldest first.
func (ds *DataStore) GetAllActions() ([]model.ActionRecord, error) {
	var records []Action
	if err := ds.DB.Order("created_at").Find(&records).Error; err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return actionModels(records), nil
}

// GetActionsForOwner returns one owner's action history ordered oldest
// first.
func (ds *DataStore) GetActionsForOwner(ownerID string) ([]model.ActionRecord, error) {
	var records []Action
	if err := ds.DB.Where("owner_id = ?", ownerID).Order("created_at").Find(&records).Error; err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryDatabase).
			Context("owner_id", ownerID).
			Component("datastore").
			Build()
	}
	return actionModels(records), nil
}

func actionModels(records []Action) []model.ActionRecord {
	actions := make([]model.ActionRecord, 0, len(records))
	for i := range records {
		actions = append(actions, records[i].toModel())
	}
	return actions
}

func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(&Profile{}, &Action{}); err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}
