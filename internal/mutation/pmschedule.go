package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/model"
)

// PMScheduleInput carries the fields for a new maintenance task definition.
type PMScheduleInput struct {
	EquipmentID   string
	TaskName      string
	Frequency     string
	LastCompleted *time.Time
	NextDue       time.Time
	Status        string
}

// PMSchedulePatch holds optional updates; nil fields are left alone.
type PMSchedulePatch struct {
	TaskName      *string
	Frequency     *string
	LastCompleted *time.Time
	NextDue       *time.Time
	Status        *string
}

// CreatePMSchedule stores a new schedule and its CREATE audit record.
func (i *Interceptor) CreatePMSchedule(ctx context.Context, actor auth.ActingUser, in PMScheduleInput) (*model.PMSchedule, error) {
	if in.TaskName == "" {
		return nil, apperr.Validation("taskName", "must not be empty")
	}
	if in.NextDue.IsZero() {
		return nil, apperr.Validation("nextDue", "must be set")
	}
	if _, err := i.store.GetEquipment(ctx, in.EquipmentID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = "Active"
	}

	sched := &model.PMSchedule{
		ID:            uuid.NewString(),
		EquipmentID:   in.EquipmentID,
		TaskName:      in.TaskName,
		Frequency:     in.Frequency,
		LastCompleted: in.LastCompleted,
		NextDue:       in.NextDue,
		Status:        in.Status,
		CreatedAt:     i.now().UTC(),
	}

	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sched).Error; err != nil {
			return &apperr.PersistenceError{Op: "create pm schedule", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditCreate, "PMSchedule", sched.ID, nil, sched, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// UpdatePMSchedule applies a patch and records old/new snapshots.
func (i *Interceptor) UpdatePMSchedule(ctx context.Context, actor auth.ActingUser, id string, patch PMSchedulePatch) (*model.PMSchedule, error) {
	var updated model.PMSchedule
	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.PMSchedule
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "PMSchedule", ID: id}
			}
			return &apperr.PersistenceError{Op: "load PMSchedule", Err: err}
		}

		updated = old
		if patch.TaskName != nil {
			updated.TaskName = *patch.TaskName
		}
		if patch.Frequency != nil {
			updated.Frequency = *patch.Frequency
		}
		if patch.LastCompleted != nil {
			updated.LastCompleted = patch.LastCompleted
		}
		if patch.NextDue != nil {
			updated.NextDue = *patch.NextDue
		}
		if patch.Status != nil {
			updated.Status = *patch.Status
		}

		if err := tx.Save(&updated).Error; err != nil {
			return &apperr.PersistenceError{Op: "update pm schedule", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditUpdate, "PMSchedule", id, &old, &updated, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
