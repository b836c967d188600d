package mutation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/model"
)

// DeleteOutcome tells the caller which branch an equipment delete took.
type DeleteOutcome string

const (
	// Decommissioned means the asset had no dependent log entries and was
	// removed outright.
	Decommissioned DeleteOutcome = "Decommissioned"
	// MarkedOffline means dependent log entries exist, so the asset was kept
	// and its status set to Offline instead.
	MarkedOffline DeleteOutcome = "MarkedOffline"
)

// EquipmentInput carries the caller-supplied fields for a new asset.
type EquipmentInput struct {
	EquipmentID         string
	Name                string
	Type                string
	Location            string
	Status              model.EquipmentStatus
	Manufacturer        string
	Model               string
	SerialNumber        string
	QualificationStatus string
	PMFrequency         string
	Description         string
}

// EquipmentPatch holds optional field updates; nil fields are left alone.
type EquipmentPatch struct {
	Name                *string
	Type                *string
	Location            *string
	Status              *model.EquipmentStatus
	Manufacturer        *string
	Model               *string
	SerialNumber        *string
	QualificationStatus *string
	PMFrequency         *string
	Description         *string
}

// CreateEquipment stores a new asset and its CREATE audit record.
func (i *Interceptor) CreateEquipment(ctx context.Context, actor auth.ActingUser, in EquipmentInput) (*model.Equipment, error) {
	if in.EquipmentID == "" {
		return nil, apperr.Validation("equipmentId", "must not be empty")
	}
	if in.Name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if in.Status == "" {
		in.Status = model.EquipmentOperational
	}
	if !model.ValidEquipmentStatus(in.Status) {
		return nil, apperr.Validation("status", "unknown equipment status")
	}

	equip := &model.Equipment{
		ID:                  uuid.NewString(),
		EquipmentID:         in.EquipmentID,
		Name:                in.Name,
		Type:                in.Type,
		Location:            in.Location,
		Status:              in.Status,
		Manufacturer:        in.Manufacturer,
		Model:               in.Model,
		SerialNumber:        in.SerialNumber,
		QualificationStatus: in.QualificationStatus,
		PMFrequency:         in.PMFrequency,
		Description:         in.Description,
		CreatedAt:           i.now().UTC(),
	}

	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(equip).Error; err != nil {
			return &apperr.PersistenceError{Op: "create equipment", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditCreate, "Equipment", equip.ID, nil, equip, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return equip, nil
}

// UpdateEquipment applies a patch and records old/new snapshots.
func (i *Interceptor) UpdateEquipment(ctx context.Context, actor auth.ActingUser, id string, patch EquipmentPatch) (*model.Equipment, error) {
	if patch.Status != nil && !model.ValidEquipmentStatus(*patch.Status) {
		return nil, apperr.Validation("status", "unknown equipment status")
	}

	var updated model.Equipment
	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.Equipment
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "Equipment", ID: id}
			}
			return &apperr.PersistenceError{Op: "load Equipment", Err: err}
		}

		updated = old
		applyEquipmentPatch(&updated, patch)
		if err := tx.Save(&updated).Error; err != nil {
			return &apperr.PersistenceError{Op: "update equipment", Err: err}
		}
		_, err := i.recorder.Record(tx, actor.ID, model.AuditUpdate, "Equipment", id, &old, &updated, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEquipment removes an asset, or marks it Offline when log entries
// still reference it. The audit action follows the branch taken: DELETE for
// a hard delete, UPDATE with old/new snapshots for the soft path.
func (i *Interceptor) DeleteEquipment(ctx context.Context, actor auth.ActingUser, id string) (DeleteOutcome, error) {
	var outcome DeleteOutcome
	err := i.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.Equipment
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "Equipment", ID: id}
			}
			return &apperr.PersistenceError{Op: "load Equipment", Err: err}
		}

		var dependents int64
		if err := tx.Model(&model.LogEntry{}).
			Where("equipment_id = ?", id).Count(&dependents).Error; err != nil {
			return &apperr.PersistenceError{Op: "count dependent log entries", Err: err}
		}

		if dependents > 0 {
			updated := old
			updated.Status = model.EquipmentOffline
			if err := tx.Save(&updated).Error; err != nil {
				return &apperr.PersistenceError{Op: "mark equipment offline", Err: err}
			}
			outcome = MarkedOffline
			_, err := i.recorder.Record(tx, actor.ID, model.AuditUpdate, "Equipment", id, &old, &updated, "")
			return err
		}

		if err := tx.Delete(&model.Equipment{}, "id = ?", id).Error; err != nil {
			return &apperr.PersistenceError{Op: "delete equipment", Err: err}
		}
		outcome = Decommissioned
		_, err := i.recorder.Record(tx, actor.ID, model.AuditDelete, "Equipment", id, &old, nil, "")
		return err
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func applyEquipmentPatch(e *model.Equipment, p EquipmentPatch) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Manufacturer != nil {
		e.Manufacturer = *p.Manufacturer
	}
	if p.Model != nil {
		e.Model = *p.Model
	}
	if p.SerialNumber != nil {
		e.SerialNumber = *p.SerialNumber
	}
	if p.QualificationStatus != nil {
		e.QualificationStatus = *p.QualificationStatus
	}
	if p.PMFrequency != nil {
		e.PMFrequency = *p.PMFrequency
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
}
