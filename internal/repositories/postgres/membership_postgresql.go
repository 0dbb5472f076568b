package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

type memberRepository struct {
	db *gorm.DB
}

func NewMemberPostgreSQL(db *gorm.DB) repositories.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert writes the membership row as a single INSERT ... ON CONFLICT
// statement so two concurrent calls for the same pair cannot race into a
// duplicate or a lost role update.
func (r *memberRepository) Upsert(ctx context.Context, tx *gorm.DB, member *models.ProjectMember) error {
	db := r.getDB(tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(member).Error
	if err != nil {
		return fmt.Errorf("failed to upsert project member: %w", err)
	}

	return nil
}

func (r *memberRepository) Get(ctx context.Context, tx *gorm.DB, projectID, userID uint) (*models.ProjectMember, error) {
	db := r.getDB(tx)

	var member models.ProjectMember
	err := db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectMember, error) {
	db := r.getDB(tx)

	var members []*models.ProjectMember
	err := db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return members, nil
}

func (r *memberRepository) Delete(ctx context.Context, tx *gorm.DB, projectID, userID uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete project member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationPostgreSQL(db *gorm.DB) repositories.InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *invitationRepository) Create(ctx context.Context, tx *gorm.DB, invitation *models.ProjectInvitation) error {
	db := r.getDB(tx)

	invitation.Email = strings.ToLower(invitation.Email)

	if err := db.WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create project invitation: %w", err)
	}

	return nil
}

func (r *invitationRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectInvitation, error) {
	db := r.getDB(tx)

	var invitations []*models.ProjectInvitation
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list project invitations: %w", err)
	}

	return invitations, nil
}

func (r *invitationRepository) ListByEmail(ctx context.Context, tx *gorm.DB, email string) ([]*models.ProjectInvitation, error) {
	db := r.getDB(tx)

	var invitations []*models.ProjectInvitation
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		Order("created_at ASC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations by email: %w", err)
	}

	return invitations, nil
}
