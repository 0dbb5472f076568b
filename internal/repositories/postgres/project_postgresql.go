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

type projectRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	inTx         bool
}

func NewProjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProjectRepository {
	return &projectRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// newProjectPostgreSQLTx binds the repository to an open transaction. Cached
// reads and writes are disabled for its lifetime: a row read before commit
// must never land in Redis, where it would outlive a rollback. Invalidations
// still run so committed mutations drop stale entries.
func newProjectPostgreSQLTx(tx *gorm.DB, redisClient *redis.Client) repositories.ProjectRepository {
	return &projectRepository{
		db:           tx,
		cacheManager: cache.NewCacheManager(redisClient),
		inTx:         true,
	}
}

func (r *projectRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// useCache reports whether this call may read or populate the project cache.
// Any transactional call, whether through the repo binding or the tx
// parameter, stays off the cache.
func (r *projectRepository) useCache(tx *gorm.DB) bool {
	return !r.inTx && tx == nil
}

func (r *projectRepository) Create(ctx context.Context, tx *gorm.DB, project *models.Project) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Project, "list:*")

	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error) {
	db := r.getDB(tx)

	if r.useCache(tx) {
		var cached models.Project
		if err := r.cacheManager.Project.Get(ctx, fmt.Sprintf("id:%d", id), &cached); err == nil {
			return &cached, nil
		}
	}

	var project models.Project
	if err := db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}

	if r.useCache(tx) {
		if err := r.cacheManager.Project.Set(ctx, fmt.Sprintf("id:%d", id), &project, cache.ProjectCacheConfig.TTL); err != nil {
			slog.WarnContext(ctx, "Failed to cache project",
				"error", err,
				"project_id", id)
		}
	}

	return &project, nil
}

func (r *projectRepository) GetByIDWithMembers(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error) {
	db := r.getDB(tx)

	var project models.Project
	err := db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Project, error) {
	db := r.getDB(tx)

	var projects []*models.Project
	err := db.WithContext(ctx).
		Distinct("projects.*").
		Joins("LEFT JOIN project_members pm ON pm.project_id = projects.id").
		Where("projects.created_by = ? OR pm.user_id = ?", userID, userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for user: %w", err)
	}

	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, tx *gorm.DB, project *models.Project) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
			"start_date":  project.StartDate,
			"end_date":    project.EndDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateProjectCache(ctx, r.cacheManager, project.ID)

	return nil
}

func (r *projectRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateProjectCache(ctx, r.cacheManager, id)

	return nil
}

func (r *projectRepository) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := r.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check project existence: %w", err)
	}

	return count > 0, nil
}
