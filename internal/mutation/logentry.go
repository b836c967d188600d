package mutation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/model"
)

// LogEntryPatch holds optional field updates for a draft entry. Status and
// the signature timestamps are not patchable here; those change only through
// the lifecycle engine.
type LogEntryPatch struct {
	EquipmentID  *string
	ActivityType *model.ActivityType
	StartTime    *time.Time
	EndTime      *time.Time
	Description  *string
	BatchNumber  *string
	Readings     *string
}

// UpdateLogEntry patches an entry that is still in Draft. Once an entry has
// been submitted it is immutable outside the lifecycle transitions, so any
// later patch attempt is rejected with a ConflictError.
func (i *Interceptor) UpdateLogEntry(ctx context.Context, actor auth.ActingUser, id string, patch LogEntryPatch) (*model.LogEntry, error) {
	if patch.ActivityType != nil && !model.ValidActivityType(*patch.ActivityType) {
		return nil, apperr.Validation("activityType", "unknown activity type")
	}
	if patch.Description != nil && *patch.Description == "" {
		return nil, apperr.Validation("description", "must not be empty")
	}
	if patch.EquipmentID != nil {
		if _, err := i.store.GetEquipment(ctx, *patch.EquipmentID); err != nil {
			return nil, err
		}
	}

	var updated model.LogEntry
	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.LogEntry
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "LogEntry", ID: id}
			}
			return &apperr.PersistenceError{Op: "load LogEntry", Err: err}
		}
		if old.Status != model.LogDraft {
			return &apperr.ConflictError{Message: "log entry is no longer editable"}
		}

		updated = old
		if patch.EquipmentID != nil {
			updated.EquipmentID = *patch.EquipmentID
		}
		if patch.ActivityType != nil {
			updated.ActivityType = *patch.ActivityType
		}
		if patch.StartTime != nil {
			updated.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			updated.EndTime = patch.EndTime
		}
		if patch.Description != nil {
			updated.Description = *patch.Description
		}
		if patch.BatchNumber != nil {
			updated.BatchNumber = *patch.BatchNumber
		}
		if patch.Readings != nil {
			updated.Readings = *patch.Readings
		}
		if updated.EndTime != nil && updated.EndTime.Before(updated.StartTime) {
			return apperr.Validation("endTime", "must not precede startTime")
		}

		if err := tx.Save(&updated).Error; err != nil {
			return &apperr.PersistenceError{Op: "update log entry", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditUpdate, "LogEntry", id, &old, &updated, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
