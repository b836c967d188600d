// Package audit owns the append-only audit trail. Every mutating operation
// in the system goes through Recorder.Record; nothing else writes to the
// audit_trail table, and nothing anywhere updates or deletes its rows.
package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/metrics"
	"pharma-elog-backend/internal/model"
)

// Recorder appends audit records. It carries no state of its own; the
// caller's transaction is passed in so the entity mutation and its audit
// record commit or fail together.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a Recorder using the wall clock.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record appends one audit record inside tx. oldValue and newValue may be
// nil (absent on create and delete respectively); non-nil values are stored
// as canonical JSON snapshots. A failed append fails the caller's operation:
// recording a mutation without its audit trail would be a correctness
// violation, so this is fail-closed.
func (r *Recorder) Record(
	tx *gorm.DB,
	actorID string,
	action model.AuditAction,
	entityType, entityID string,
	oldValue, newValue any,
	reason string,
) (*model.AuditRecord, error) {
	old, err := snapshotOptional(oldValue)
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "audit snapshot", Err: err}
	}
	updated, err := snapshotOptional(newValue)
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "audit snapshot", Err: err}
	}

	rec := &model.AuditRecord{
		ID:         uuid.NewString(),
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   old,
		NewValue:   updated,
		Reason:     reason,
		Timestamp:  r.now().UTC(),
	}
	if err := tx.Create(rec).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "audit append", Err: err}
	}

	metrics.AuditRecordsTotal.WithLabelValues(string(action)).Inc()
	return rec, nil
}
