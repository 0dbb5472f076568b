package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/cache"
	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

type taskRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTaskPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TaskRepository {
	return &taskRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *taskRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *taskRepository) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	cache.InvalidateTaskCache(ctx, r.cacheManager, task.ProjectID)

	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	db := r.getDB(tx)

	var task models.Task
	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, filters repositories.TaskFilters) ([]*models.Task, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Where("project_id = ?", projectID)
	query = ApplyTaskFilters(query, filters)
	query = ApplyTaskSort(query, filters.SortBy, filters.SortDesc)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var tasks []*models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TaskStatus) (*models.Task, error) {
	return r.updateAndReload(ctx, tx, id, map[string]interface{}{"status": status})
}

func (r *taskRepository) UpdateDueDate(ctx context.Context, tx *gorm.DB, id uint, dueDate time.Time) (*models.Task, error) {
	return r.updateAndReload(ctx, tx, id, map[string]interface{}{"due_date": dueDate})
}

func (r *taskRepository) UpdateDescription(ctx context.Context, tx *gorm.DB, id uint, description string) (*models.Task, error) {
	return r.updateAndReload(ctx, tx, id, map[string]interface{}{"description": description})
}

func (r *taskRepository) updateAndReload(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) (*models.Task, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var task models.Task
	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}

	cache.InvalidateTaskCache(ctx, r.cacheManager, task.ProjectID)

	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	var task models.Task
	if err := db.WithContext(ctx).Select("project_id").First(&task, id).Error; err != nil {
		return err
	}

	// Assignments go first; the task row is the commit point
	if err := db.WithContext(ctx).
		Where("task_id = ?", id).
		Delete(&models.TaskAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete task assignments: %w", err)
	}

	result := db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateTaskCache(ctx, r.cacheManager, task.ProjectID)

	return nil
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *assignmentRepository) Create(ctx context.Context, tx *gorm.DB, assignment *models.TaskAssignment) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create task assignment: %w", err)
	}

	return nil
}

func (r *assignmentRepository) Exists(ctx context.Context, tx *gorm.DB, taskID, userID uint) (bool, error) {
	db := r.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assignment existence: %w", err)
	}

	return count > 0, nil
}

func (r *assignmentRepository) ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.TaskAssignment, error) {
	db := r.getDB(tx)

	var assignments []*models.TaskAssignment
	err := db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list task assignments: %w", err)
	}

	return assignments, nil
}

func (r *assignmentRepository) DeleteByTask(ctx context.Context, tx *gorm.DB, taskID uint) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&models.TaskAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignments for task: %w", err)
	}

	return nil
}
