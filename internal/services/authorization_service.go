package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
)

// authorizationService is the single place effective roles are computed.
// Callers never compare created_by themselves; they ask Resolve or Authorize.
//
// Role resolution is deliberately uncached: a role can change between two
// requests and every decision must see the current ledger state.
type authorizationService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAuthorizationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AuthorizationService {
	return &authorizationService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *authorizationService) Resolve(ctx context.Context, userID, projectID uint) (models.ProjectRole, error) {
	project, err := s.repo.Project().GetByID(ctx, nil, projectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.RoleNonMember, ErrProjectNotFound
		}
		return models.RoleNonMember, fmt.Errorf("failed to resolve project: %w", err)
	}

	// Ownership outranks everything, including any stray membership row
	if project.CreatedBy == userID {
		return models.RoleAdmin, nil
	}

	member, err := s.repo.Member().Get(ctx, nil, projectID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.RoleNonMember, nil
		}
		return models.RoleNonMember, fmt.Errorf("failed to resolve membership: %w", err)
	}

	return member.Role, nil
}

func (s *authorizationService) Authorize(ctx context.Context, access AccessContext, allowed ...models.ProjectRole) error {
	role, err := s.Resolve(ctx, access.UserID, access.ProjectID)
	if err != nil {
		return err
	}

	// Admins bypass both the role gate and the task-scope gate
	if role == models.RoleAdmin {
		return nil
	}

	if role == models.RoleNonMember {
		return NewPermissionError(access.UserID, access.ProjectID, "project", "access", "not a project member")
	}

	if !roleAllowed(role, allowed) {
		return NewPermissionError(access.UserID, access.ProjectID, "project", "access",
			fmt.Sprintf("role %s is not permitted", role))
	}

	// Members get the fine-grained gate: the route family was allowed, the
	// specific task still requires an assignment row.
	if role == models.RoleMember && access.TaskScoped {
		if access.TaskID == nil {
			return NewPermissionError(access.UserID, access.ProjectID, "task", "access",
				"task-scoped operation without a task id")
		}

		assigned, err := s.repo.Assignment().Exists(ctx, nil, *access.TaskID, access.UserID)
		if err != nil {
			return fmt.Errorf("failed to check task assignment: %w", err)
		}
		if !assigned {
			s.logger.Debug("Task-scope gate denied member",
				"user_id", access.UserID, "project_id", access.ProjectID, "task_id", *access.TaskID)
			return NewPermissionError(access.UserID, access.ProjectID, "task", "access",
				"member is not assigned to this task")
		}
	}

	return nil
}

func roleAllowed(role models.ProjectRole, allowed []models.ProjectRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
