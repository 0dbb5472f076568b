package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
)

type projectService struct {
	repo          repositories.Repository
	db            *gorm.DB
	logger        *slog.Logger
	validator     *validator.Validator
	notifications NotificationService
}

func NewProjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, notifications NotificationService) ProjectService {
	return &projectService{
		repo:          repo,
		db:            db,
		logger:        logger,
		validator:     v,
		notifications: notifications,
	}
}

// Create inserts the project and resolves every assignee inside one
// transaction. A failed member or invitation write rolls the project row
// back too; the caller never observes a partially seeded project.
func (s *projectService) Create(ctx context.Context, req *CreateProjectRequest, createdBy uint) (*ProjectMutationResult, error) {
	s.logger.Info("Creating project", "creator_id", createdBy, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateDateRange(req.StartDate, req.EndDate); len(errs) > 0 {
		return nil, errs
	}

	result := &ProjectMutationResult{}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		project := &models.Project{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			CreatedBy:   createdBy,
		}

		if err := txRepo.Project().Create(ctx, nil, project); err != nil {
			return err
		}

		members, invitations, err := s.resolveAssignees(ctx, txRepo, project.ID, req.Assignees, createdBy)
		if err != nil {
			return err
		}

		result.Project = project
		result.MembersAdded = members
		result.InvitationsCreated = invitations
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		"project_id", result.Project.ID,
		"members_added", len(result.MembersAdded),
		"invitations_created", len(result.InvitationsCreated))

	// Post-commit side effects; never affect the response
	s.notifications.ProjectCreated(context.WithoutCancel(ctx), result)

	return result, nil
}

// AddMembers runs the same match/upsert-or-invite partition against an
// existing project.
func (s *projectService) AddMembers(ctx context.Context, projectID uint, assignees []AssigneeRequest, invitedBy uint) (*ProjectMutationResult, error) {
	for i := range assignees {
		if err := s.validator.Validate(&assignees[i]); err != nil {
			return nil, err
		}
	}

	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := &ProjectMutationResult{Project: project}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		members, invitations, err := s.resolveAssignees(ctx, txRepo, projectID, assignees, invitedBy)
		if err != nil {
			return err
		}

		result.MembersAdded = members
		result.InvitationsCreated = invitations
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.MembersAdded(context.WithoutCancel(ctx), result)

	return result, nil
}

// resolveAssignees partitions the requested assignees: emails with a
// matching account get a membership upsert, the rest become invitations.
// The project creator is already the implicit admin and is never written to
// the membership table.
func (s *projectService) resolveAssignees(ctx context.Context, txRepo repositories.Repository, projectID uint, assignees []AssigneeRequest, invitedBy uint) ([]MemberInfo, []InvitationInfo, error) {
	var members []MemberInfo
	var invitations []InvitationInfo

	project, err := txRepo.Project().GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project for assignee resolution: %w", err)
	}

	for _, assignee := range assignees {
		role := models.ParseProjectRole(assignee.Role)
		email := strings.ToLower(strings.TrimSpace(assignee.Email))

		user, err := txRepo.User().GetByEmail(ctx, nil, email)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return nil, nil, fmt.Errorf("failed to look up assignee %s: %w", email, err)
			}

			invitation := &models.ProjectInvitation{
				ProjectID: projectID,
				Email:     email,
				Role:      role,
				InvitedBy: invitedBy,
			}
			if err := txRepo.Invitation().Create(ctx, nil, invitation); err != nil {
				return nil, nil, err
			}

			invitations = append(invitations, InvitationInfo{Email: email, Role: role})
			continue
		}

		// The creator is the implicit admin; a membership row for them
		// would shadow that
		if user.ID == project.CreatedBy {
			continue
		}

		member := &models.ProjectMember{
			ProjectID: projectID,
			UserID:    user.ID,
			Role:      role,
		}
		if err := txRepo.Member().Upsert(ctx, nil, member); err != nil {
			return nil, nil, err
		}

		members = append(members, MemberInfo{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     role,
		})
	}

	return members, invitations, nil
}

func (s *projectService) Update(ctx context.Context, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if errs := s.validator.GetBusinessValidator().ValidateDateRange(project.StartDate, project.EndDate); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Project().Update(ctx, nil, project); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	return project, nil
}

// Delete removes the project and everything hanging off it. The deleted row
// is returned so the handler can echo it back.
func (s *projectService) Delete(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		tasks, err := txRepo.Task().ListByProject(ctx, nil, projectID, repositories.TaskFilters{})
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if err := txRepo.Task().Delete(ctx, nil, task.ID); err != nil {
				return err
			}
		}

		return txRepo.Project().Delete(ctx, nil, projectID)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.logger.Info("Project deleted", "project_id", projectID)

	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, projectID, requesterID uint) (*ProjectDetailResponse, error) {
	project, err := s.repo.Project().GetByIDWithMembers(ctx, nil, projectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	members := make([]MemberInfo, 0, len(project.Members)+1)

	// The implicit admin heads the member list
	admin, err := s.repo.User().GetByID(ctx, nil, project.CreatedBy)
	if err == nil {
		members = append(members, MemberInfo{
			UserID:   admin.ID,
			Username: admin.Username,
			Email:    admin.Email,
			Role:     models.RoleAdmin,
		})
	}

	requesterRole := models.RoleNonMember
	if project.CreatedBy == requesterID {
		requesterRole = models.RoleAdmin
	}

	for _, m := range project.Members {
		info := MemberInfo{
			UserID: m.UserID,
			Role:   m.Role,
		}
		if m.User != nil {
			info.Username = m.User.Username
			info.Email = m.User.Email
		}
		members = append(members, info)

		if m.UserID == requesterID && requesterRole == models.RoleNonMember {
			requesterRole = m.Role
		}
	}

	return &ProjectDetailResponse{
		Project:  project,
		Members:  members,
		UserRole: requesterRole,
	}, nil
}

func (s *projectService) ListByUser(ctx context.Context, userID uint) ([]*models.Project, error) {
	projects, err := s.repo.Project().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (s *projectService) getProject(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.repo.Project().GetByID(ctx, nil, projectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}
