// Package lifecycle owns the log entry state machine. Entries move
// Draft -> Submitted -> Approved, each transition gated by an electronic
// signature (password re-entry plus a declared reason) and recorded in the
// audit trail within the same transaction as the entity update.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/store"
)

// ApproverRoles are the roles allowed to sign an approval.
var ApproverRoles = []model.Role{model.RoleQA, model.RoleAdmin}

// Engine applies lifecycle operations to log entries.
type Engine struct {
	store    store.Store
	verifier *auth.Verifier
	recorder *audit.Recorder
	now      func() time.Time
}

// NewEngine wires the engine to its collaborators.
func NewEngine(s store.Store, v *auth.Verifier, r *audit.Recorder) *Engine {
	return &Engine{store: s, verifier: v, recorder: r, now: time.Now}
}

// CreateInput carries the fields for a new draft entry.
type CreateInput struct {
	EquipmentID  string
	ActivityType model.ActivityType
	StartTime    time.Time
	EndTime      *time.Time
	Description  string
	BatchNumber  string
	Readings     string
}

// Create validates the input and stores a new entry in Draft state, together
// with its CREATE audit record.
func (e *Engine) Create(ctx context.Context, actor auth.ActingUser, in CreateInput) (*model.LogEntry, error) {
	if in.Description == "" {
		return nil, apperr.Validation("description", "must not be empty")
	}
	if !model.ValidActivityType(in.ActivityType) {
		return nil, apperr.Validation("activityType", "unknown activity type")
	}
	if in.StartTime.IsZero() {
		return nil, apperr.Validation("startTime", "must be set")
	}
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return nil, apperr.Validation("endTime", "must not precede startTime")
	}
	if _, err := e.store.GetEquipment(ctx, in.EquipmentID); err != nil {
		return nil, err
	}

	entry := &model.LogEntry{
		ID:           uuid.NewString(),
		EquipmentID:  in.EquipmentID,
		ActivityType: in.ActivityType,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Description:  in.Description,
		BatchNumber:  in.BatchNumber,
		Readings:     in.Readings,
		Status:       model.LogDraft,
		CreatedBy:    actor.ID,
		CreatedAt:    e.now().UTC(),
	}

	err := e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		logID, err := store.NextLogID(tx, entry.CreatedAt)
		if err != nil {
			return err
		}
		entry.LogID = logID
		if err := tx.Create(entry).Error; err != nil {
			return &apperr.PersistenceError{Op: "create log entry", Err: err}
		}
		_, err = e.recorder.Record(tx, actor.ID, model.AuditCreate, "LogEntry", entry.ID, nil, entry, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Submit re-authenticates the signer and moves a Draft entry to Submitted.
// Any active account may sign a submission. The status precondition is part
// of the UPDATE itself, so a concurrent transition loses cleanly instead of
// overwriting submittedAt.
func (e *Engine) Submit(ctx context.Context, id, username, password, reason string) (*model.LogEntry, error) {
	if reason == "" {
		return nil, apperr.Validation("reason", "signature reason is required")
	}
	signer, err := e.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	return e.transition(ctx, id, signer.ID, model.LogDraft, model.AuditUpdate, "Submitted: "+reason,
		map[string]any{
			"status":       model.LogSubmitted,
			"submitted_at": now,
		})
}

// Approve re-authenticates the signer, requires a QA or Admin role, and
// moves a Submitted entry to Approved.
func (e *Engine) Approve(ctx context.Context, id, username, password, reason string) (*model.LogEntry, error) {
	if reason == "" {
		return nil, apperr.Validation("reason", "signature reason is required")
	}
	signer, err := e.verifier.Verify(ctx, username, password, ApproverRoles...)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	return e.transition(ctx, id, signer.ID, model.LogSubmitted, model.AuditApprove, "Approved: "+reason,
		map[string]any{
			"status":      model.LogApproved,
			"approved_at": now,
			"approved_by": signer.ID,
		})
}

// transition applies a signature-gated status change. The old snapshot, the
// guarded update and the audit record share one transaction; if the guard
// misses (wrong current status, or a concurrent writer got there first) the
// whole operation rolls back with a ConflictError.
func (e *Engine) transition(
	ctx context.Context,
	id, signerID string,
	from model.LogStatus,
	action model.AuditAction,
	reason string,
	updates map[string]any,
) (*model.LogEntry, error) {
	var updated model.LogEntry
	err := e.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.LogEntry
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &apperr.NotFoundError{Entity: "LogEntry", ID: id}
			}
			return &apperr.PersistenceError{Op: "load LogEntry", Err: err}
		}

		res := tx.Model(&model.LogEntry{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return &apperr.PersistenceError{Op: "update log entry status", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &apperr.ConflictError{
				Message: "log entry is not in " + string(from) + " state",
			}
		}

		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return &apperr.PersistenceError{Op: "reload log entry", Err: err}
		}
		_, err := e.recorder.Record(tx, signerID, action, "LogEntry", id, &old, &updated, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
