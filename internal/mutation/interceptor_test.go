package mutation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/db"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/store"
)

func newInterceptor(t *testing.T) (*Interceptor, store.Store) {
	// A named in-memory database keeps every pooled connection on the same
	// data while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	return NewInterceptor(s, audit.NewRecorder(), bcrypt.MinCost), s
}

func adminActor() auth.ActingUser {
	return auth.ActingUser{ID: "admin-1", Username: "admin", Role: model.RoleAdmin}
}

func latestAudit(t *testing.T, s store.Store) *model.AuditRecord {
	records, err := s.ListAuditRecords(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return &records[0]
}

func seedEquipment(t *testing.T, s store.Store, equipmentID string) *model.Equipment {
	equip := &model.Equipment{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		Name:        "Autoclave A-1",
		Type:        "Autoclave",
		Location:    "Room 210",
		Status:      model.EquipmentOperational,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(equip).Error)
	return equip
}

func TestCreateEquipmentDefaultsAndAudits(t *testing.T) {
	i, s := newInterceptor(t)

	equip, err := i.CreateEquipment(context.Background(), adminActor(), EquipmentInput{
		EquipmentID: "EQ-100",
		Name:        "Lyophilizer L-3",
		Type:        "Lyophilizer",
		Location:    "Room 115",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentOperational, equip.Status)

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditCreate, rec.Action)
	assert.Equal(t, "Equipment", rec.EntityType)
	assert.Equal(t, equip.ID, rec.EntityID)
	assert.Nil(t, rec.OldValue)
	require.NotNil(t, rec.NewValue)
	assert.Contains(t, *rec.NewValue, `"equipmentId":"EQ-100"`)
}

func TestUpdateEquipmentRecordsBothSnapshots(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	status := model.EquipmentMaintenance
	updated, err := i.UpdateEquipment(context.Background(), adminActor(), equip.ID, EquipmentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentMaintenance, updated.Status)

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditUpdate, rec.Action)
	require.NotNil(t, rec.OldValue)
	assert.Contains(t, *rec.OldValue, `"status":"Operational"`)
	require.NotNil(t, rec.NewValue)
	assert.Contains(t, *rec.NewValue, `"status":"Maintenance"`)
}

func TestDeleteEquipmentWithoutDependentsRemovesRow(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	outcome, err := i.DeleteEquipment(context.Background(), adminActor(), equip.ID)
	require.NoError(t, err)
	assert.Equal(t, Decommissioned, outcome)

	_, err = s.GetEquipment(context.Background(), equip.ID)
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditDelete, rec.Action)
	require.NotNil(t, rec.OldValue)
	assert.Nil(t, rec.NewValue)
}

func TestDeleteEquipmentWithLogEntriesMarksOffline(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	entry := &model.LogEntry{
		ID:           uuid.NewString(),
		LogID:        "LOG-2024-001",
		EquipmentID:  equip.ID,
		ActivityType: model.ActivityCleaning,
		StartTime:    time.Now().UTC(),
		Description:  "CIP cycle",
		Status:       model.LogDraft,
		CreatedBy:    "op-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(entry).Error)

	outcome, err := i.DeleteEquipment(context.Background(), adminActor(), equip.ID)
	require.NoError(t, err)
	assert.Equal(t, MarkedOffline, outcome)

	// The asset survives with Offline status so its history stays navigable.
	kept, err := s.GetEquipment(context.Background(), equip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentOffline, kept.Status)

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditUpdate, rec.Action)
	require.NotNil(t, rec.NewValue)
	assert.Contains(t, *rec.NewValue, `"status":"Offline"`)
}

func TestCreateUserAdminOnly(t *testing.T) {
	i, _ := newInterceptor(t)

	qa := auth.ActingUser{ID: "qa-1", Username: "qauser", Role: model.RoleQA}
	_, err := i.CreateUser(context.Background(), qa, UserInput{
		Username: "newuser",
		Password: "secret",
		Role:     model.RoleOperator,
		IsActive: true,
	})
	var authz *apperr.AuthorizationError
	require.ErrorAs(t, err, &authz)
	assert.Equal(t, []model.Role{model.RoleAdmin}, authz.Required)
}

func TestCreateUserHashesPasswordAndKeepsItOutOfAudit(t *testing.T) {
	i, s := newInterceptor(t)

	user, err := i.CreateUser(context.Background(), adminActor(), UserInput{
		Username:   "jdoe",
		Password:   "plaintext-secret",
		FullName:   "Jane Doe",
		Role:       model.RoleOperator,
		Department: "Manufacturing",
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext-secret", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "plaintext-secret"))

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditCreate, rec.Action)
	assert.Equal(t, "User", rec.EntityType)
	require.NotNil(t, rec.NewValue)
	assert.NotContains(t, *rec.NewValue, "plaintext-secret")
	assert.NotContains(t, *rec.NewValue, user.PasswordHash)
}

func TestUpdateUserRehashesSuppliedPassword(t *testing.T) {
	i, s := newInterceptor(t)

	created, err := i.CreateUser(context.Background(), adminActor(), UserInput{
		Username: "jdoe",
		Password: "old-secret",
		Role:     model.RoleOperator,
		IsActive: true,
	})
	require.NoError(t, err)

	newPass := "new-secret"
	updated, err := i.UpdateUser(context.Background(), adminActor(), created.ID, UserPatch{Password: &newPass})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(updated.PasswordHash, "new-secret"))
	assert.False(t, auth.CheckPassword(updated.PasswordHash, "old-secret"))

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditUpdate, rec.Action)
	require.NotNil(t, rec.NewValue)
	assert.NotContains(t, *rec.NewValue, "new-secret")
}

func TestUpdateLogEntryDraftOnly(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	entry := &model.LogEntry{
		ID:           uuid.NewString(),
		LogID:        "LOG-2024-001",
		EquipmentID:  equip.ID,
		ActivityType: model.ActivityOperation,
		StartTime:    time.Now().UTC(),
		Description:  "Batch run",
		Status:       model.LogSubmitted,
		CreatedBy:    "op-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(entry).Error)

	desc := "amended description"
	_, err := i.UpdateLogEntry(context.Background(), adminActor(), entry.ID, LogEntryPatch{Description: &desc})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	reloaded, err := s.GetLogEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Batch run", reloaded.Description)
}

func TestUpdateLogEntryPatchesDraft(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	entry := &model.LogEntry{
		ID:           uuid.NewString(),
		LogID:        "LOG-2024-001",
		EquipmentID:  equip.ID,
		ActivityType: model.ActivityOperation,
		StartTime:    time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Description:  "Batch run",
		Status:       model.LogDraft,
		CreatedBy:    "op-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(entry).Error)

	desc := "Batch run, lot 42"
	batch := "B-42"
	updated, err := i.UpdateLogEntry(context.Background(), adminActor(), entry.ID, LogEntryPatch{
		Description: &desc,
		BatchNumber: &batch,
	})
	require.NoError(t, err)
	assert.Equal(t, "Batch run, lot 42", updated.Description)
	assert.Equal(t, "B-42", updated.BatchNumber)
	assert.Equal(t, model.LogDraft, updated.Status)

	rec := latestAudit(t, s)
	assert.Equal(t, model.AuditUpdate, rec.Action)
	assert.Equal(t, "LogEntry", rec.EntityType)
}

func TestUpdateLogEntryEndTimeValidation(t *testing.T) {
	i, s := newInterceptor(t)
	equip := seedEquipment(t, s, "EQ-100")

	entry := &model.LogEntry{
		ID:           uuid.NewString(),
		LogID:        "LOG-2024-001",
		EquipmentID:  equip.ID,
		ActivityType: model.ActivityOperation,
		StartTime:    time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Description:  "Batch run",
		Status:       model.LogDraft,
		CreatedBy:    "op-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(entry).Error)

	before := entry.StartTime.Add(-time.Hour)
	_, err := i.UpdateLogEntry(context.Background(), adminActor(), entry.ID, LogEntryPatch{EndTime: &before})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "endTime", ve.Field)
}
