package store

import (
	"context"
	"time"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/model"
)

// DashboardStats aggregates entity counts for the dashboard view.
type DashboardStats struct {
	EquipmentByStatus map[model.EquipmentStatus]int64 `json:"equipmentByStatus"`
	LogsByStatus      map[model.LogStatus]int64       `json:"logsByStatus"`
	OverduePMTasks    int64                           `json:"overduePmTasks"`
	ActiveUsers       int64                           `json:"activeUsers"`
}

// GetDashboardStats runs the grouped counts in a handful of aggregate
// queries rather than loading full tables.
func (s *gormStore) GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		EquipmentByStatus: make(map[model.EquipmentStatus]int64),
		LogsByStatus:      make(map[model.LogStatus]int64),
	}

	type countRow struct {
		Key string
		N   int64
	}

	var equipRows []countRow
	if err := s.db.WithContext(ctx).Model(&model.Equipment{}).
		Select("status as key, COUNT(*) as n").Group("status").
		Scan(&equipRows).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "aggregate equipment", Err: err}
	}
	for _, row := range equipRows {
		stats.EquipmentByStatus[model.EquipmentStatus(row.Key)] = row.N
	}

	var logRows []countRow
	if err := s.db.WithContext(ctx).Model(&model.LogEntry{}).
		Select("status as key, COUNT(*) as n").Group("status").
		Scan(&logRows).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "aggregate log entries", Err: err}
	}
	for _, row := range logRows {
		stats.LogsByStatus[model.LogStatus(row.Key)] = row.N
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.db.WithContext(ctx).Model(&model.PMSchedule{}).
		Where("next_due < ? AND status <> ?", startOfDay, model.PMCompleted).
		Count(&stats.OverduePMTasks).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "count overdue pm tasks", Err: err}
	}

	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "count active users", Err: err}
	}

	return stats, nil
}
