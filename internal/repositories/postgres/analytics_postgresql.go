package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/cache"
	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

type analyticsRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewAnalyticsPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnalyticsRepository {
	return &analyticsRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, ""),
	}
}

func (r *analyticsRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *analyticsRepository) TaskStatusCounts(ctx context.Context, tx *gorm.DB, projectID uint) (*repositories.TaskStatusCounts, error) {
	db := r.getDB(tx)

	cacheKey := fmt.Sprintf("project:%d:status", projectID)
	if tx == nil {
		var cached repositories.TaskStatusCounts
		if err := r.cacheHelper.GetWithConfig(ctx, cacheKey, &cached, cache.StatsCacheConfig); err == nil {
			return &cached, nil
		}
	}

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}

	err := db.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	counts := &repositories.TaskStatusCounts{}
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case models.StatusPending:
			counts.Pending = row.Count
		case models.StatusOngoing:
			counts.Ongoing = row.Count
		case models.StatusCompleted:
			counts.Completed = row.Count
		}
	}

	if tx == nil {
		if err := r.cacheHelper.SetWithConfig(ctx, cacheKey, counts, cache.StatsCacheConfig); err != nil {
			slog.WarnContext(ctx, "Failed to cache task status counts",
				"error", err,
				"project_id", projectID)
		}
	}

	return counts, nil
}

func (r *analyticsRepository) WorkloadRows(ctx context.Context, tx *gorm.DB, projectID uint) ([]*repositories.WorkloadRow, error) {
	db := r.getDB(tx)

	var rows []*repositories.WorkloadRow

	err := db.WithContext(ctx).
		Table("task_assignments ta").
		Select("ta.user_id, u.username, COUNT(DISTINCT ta.task_id) as task_count").
		Joins("JOIN tasks t ON t.id = ta.task_id").
		Joins("JOIN users u ON u.id = ta.user_id").
		Where("t.project_id = ?", projectID).
		Group("ta.user_id, u.username").
		Order("task_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workload: %w", err)
	}

	return rows, nil
}

func (r *analyticsRepository) DistinctAssignedTasks(ctx context.Context, tx *gorm.DB, projectID uint) (int64, error) {
	db := r.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Table("task_assignments ta").
		Joins("JOIN tasks t ON t.id = ta.task_id").
		Where("t.project_id = ?", projectID).
		Distinct("ta.task_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assigned tasks: %w", err)
	}

	return count, nil
}
