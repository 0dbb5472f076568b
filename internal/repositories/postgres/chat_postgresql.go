package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

type chatRepository struct {
	db *gorm.DB
}

func NewChatPostgreSQL(db *gorm.DB) repositories.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatRepository) Create(ctx context.Context, tx *gorm.DB, message *models.ChatMessage) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	return nil
}

func (r *chatRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, limit int) ([]*models.ChatMessage, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []*models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	return messages, nil
}
