package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentPostgreSQL(db *gorm.DB) repositories.AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *attachmentRepository) Create(ctx context.Context, tx *gorm.DB, attachment *models.FileAttachment) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(attachment).Error; err != nil {
		return fmt.Errorf("failed to create file attachment: %w", err)
	}

	return nil
}

func (r *attachmentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.FileAttachment, error) {
	db := r.getDB(tx)

	var attachment models.FileAttachment
	if err := db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		return nil, err
	}

	return &attachment, nil
}

func (r *attachmentRepository) ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.FileAttachment, error) {
	db := r.getDB(tx)

	var attachments []*models.FileAttachment
	err := db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments for task: %w", err)
	}

	return attachments, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.FileAttachment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete file attachment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
