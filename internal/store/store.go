package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/model"
)

// Store defines the read side of the database layer. Mutations go through
// the lifecycle engine and the mutation interceptor, which run their own
// transactions against DB() so each write commits together with its audit
// record.
type Store interface {
	DB() *gorm.DB

	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)

	GetLogEntry(ctx context.Context, id string) (*model.LogEntry, error)
	ListLogEntries(ctx context.Context) ([]model.LogEntry, error)

	GetPMSchedule(ctx context.Context, id string) (*model.PMSchedule, error)
	ListPMSchedules(ctx context.Context) ([]model.PMSchedule, error)

	ListAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error)
	GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "User", id)
	}
	return &u, nil
}

// FindUserByUsername looks up an account by its exact, case-sensitive
// username.
func (s *gormStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err, "User", username)
	}
	return &u, nil
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "list users", Err: err}
	}
	return users, nil
}

func (s *gormStore) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	var e model.Equipment
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Equipment", id)
	}
	return &e, nil
}

func (s *gormStore) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	var list []model.Equipment
	if err := s.db.WithContext(ctx).Order("equipment_id").Find(&list).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "list equipment", Err: err}
	}
	return list, nil
}

func (s *gormStore) GetLogEntry(ctx context.Context, id string) (*model.LogEntry, error) {
	var entry model.LogEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "LogEntry", id)
	}
	return &entry, nil
}

func (s *gormStore) ListLogEntries(ctx context.Context) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "list log entries", Err: err}
	}
	return entries, nil
}

func (s *gormStore) GetPMSchedule(ctx context.Context, id string) (*model.PMSchedule, error) {
	var sched model.PMSchedule
	if err := s.db.WithContext(ctx).First(&sched, "id = ?", id).Error; err != nil {
		return nil, translate(err, "PMSchedule", id)
	}
	return &sched, nil
}

func (s *gormStore) ListPMSchedules(ctx context.Context) ([]model.PMSchedule, error) {
	var list []model.PMSchedule
	if err := s.db.WithContext(ctx).Order("next_due").Find(&list).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "list pm schedules", Err: err}
	}
	return list, nil
}

// ListAuditRecords returns the newest records first.
func (s *gormStore) ListAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []model.AuditRecord
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "list audit records", Err: err}
	}
	return records, nil
}

// NextLogID allocates the next sequential business key for a log entry,
// scoped per calendar year ("LOG-2024-893"). Runs inside the creation
// transaction so concurrent creates serialize on the insert's unique index.
func NextLogID(tx *gorm.DB, now time.Time) (string, error) {
	year := now.UTC().Year()
	prefix := fmt.Sprintf("LOG-%d-", year)
	var n int64
	if err := tx.Model(&model.LogEntry{}).
		Where("log_id LIKE ?", prefix+"%").Count(&n).Error; err != nil {
		return "", &apperr.PersistenceError{Op: "allocate log id", Err: err}
	}
	return fmt.Sprintf("%s%03d", prefix, n+1), nil
}

// translate maps GORM errors into the shared taxonomy.
func translate(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.NotFoundError{Entity: entity, ID: id}
	}
	return &apperr.PersistenceError{Op: "load " + entity, Err: err}
}
