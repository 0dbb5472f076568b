package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
)

type taskService struct {
	repo          repositories.Repository
	db            *gorm.DB
	logger        *slog.Logger
	validator     *validator.Validator
	notifications NotificationService
}

func NewTaskService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, notifications NotificationService) TaskService {
	return &taskService{
		repo:          repo,
		db:            db,
		logger:        logger,
		validator:     v,
		notifications: notifications,
	}
}

// CreateTasks persists a batch of tasks atomically. Validation runs up
// front for the whole batch: one bad task means nothing is written.
// Assignee names that resolve to visitors or non-members are skipped
// quietly rather than failing the task.
func (s *taskService) CreateTasks(ctx context.Context, reqs []CreateTaskRequest, createdBy uint) ([]*TaskResponse, error) {
	if len(reqs) == 0 {
		return nil, validator.ValidationErrors{{Field: "tasks", Message: "at least one task is required", Rule: "required"}}
	}

	for i := range reqs {
		if err := s.validator.Validate(&reqs[i]); err != nil {
			return nil, err
		}
	}

	var responses []*TaskResponse

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		responses = responses[:0]

		for i := range reqs {
			resp, err := s.createTask(ctx, txRepo, &reqs[i])
			if err != nil {
				return err
			}
			responses = append(responses, resp)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task batch created", "creator_id", createdBy, "count", len(responses))

	s.notifications.TasksCreated(context.WithoutCancel(ctx), responses)

	return responses, nil
}

func (s *taskService) createTask(ctx context.Context, txRepo repositories.Repository, req *CreateTaskRequest) (*TaskResponse, error) {
	exists, err := txRepo.Project().Exists(ctx, nil, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	status := models.StatusPending
	if req.Status != "" {
		status = models.TaskStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	task := &models.Task{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	}

	if err := txRepo.Task().Create(ctx, nil, task); err != nil {
		return nil, err
	}

	assignees, err := s.assignByUsernames(ctx, txRepo, task, req.AssignedMembers)
	if err != nil {
		return nil, err
	}

	return &TaskResponse{Task: task, Assignees: assignees}, nil
}

// assignByUsernames resolves each username and links an assignment only for
// users who hold a non-visitor membership in the task's project. Everyone
// else is skipped without error.
func (s *taskService) assignByUsernames(ctx context.Context, txRepo repositories.Repository, task *models.Task, usernames []string) ([]MemberInfo, error) {
	var assignees []MemberInfo

	for _, username := range usernames {
		user, err := txRepo.User().GetByUsername(ctx, nil, username)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Debug("Skipping unknown assignee", "username", username, "task_id", task.ID)
				continue
			}
			return nil, fmt.Errorf("failed to resolve assignee %s: %w", username, err)
		}

		member, err := txRepo.Member().Get(ctx, nil, task.ProjectID, user.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Debug("Skipping non-member assignee", "username", username, "project_id", task.ProjectID)
				continue
			}
			return nil, fmt.Errorf("failed to check membership for %s: %w", username, err)
		}

		if !member.Role.CanBeAssigned() {
			s.logger.Debug("Skipping visitor assignee", "username", username, "project_id", task.ProjectID)
			continue
		}

		assignment := &models.TaskAssignment{TaskID: task.ID, UserID: user.ID}
		if err := txRepo.Assignment().Create(ctx, nil, assignment); err != nil {
			return nil, err
		}

		assignees = append(assignees, MemberInfo{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     member.Role,
		})
	}

	return assignees, nil
}

// AddAssignee links one user to one task. The assignee must already be a
// non-visitor member of the project; a duplicate assignment is a conflict.
func (s *taskService) AddAssignee(ctx context.Context, projectID, taskID, assigneeID, actingUserID uint) (*models.TaskAssignment, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}

	member, err := s.repo.Member().Get(ctx, nil, projectID, assigneeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewPermissionError(assigneeID, projectID, "task", "assign",
				"user is not a member of this project")
		}
		return nil, fmt.Errorf("failed to check assignee membership: %w", err)
	}

	if !member.Role.CanBeAssigned() {
		return nil, NewPermissionError(assigneeID, projectID, "task", "assign",
			"visitors cannot be assigned to tasks")
	}

	exists, err := s.repo.Assignment().Exists(ctx, nil, taskID, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if exists {
		return nil, ErrDuplicateAssignment
	}

	assignment := &models.TaskAssignment{TaskID: taskID, UserID: assigneeID}
	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("Assignee added", "task_id", taskID, "assignee_id", assigneeID, "acting_user_id", actingUserID)

	s.notifications.TaskAssigned(context.WithoutCancel(ctx), task, assigneeID)

	return assignment, nil
}

func (s *taskService) EditProgress(ctx context.Context, taskID uint, status string) (*models.Task, error) {
	newStatus := models.TaskStatus(status)
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.repo.Task().UpdateStatus(ctx, nil, taskID, newStatus)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.notifications.ProgressEdited(context.WithoutCancel(ctx), taskID)

	return task, nil
}

func (s *taskService) UpdateDueDate(ctx context.Context, taskID uint, dueDate time.Time) (*models.Task, error) {
	task, err := s.repo.Task().UpdateDueDate(ctx, nil, taskID, dueDate)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.notifications.DueDateChanged(context.WithoutCancel(ctx), task)

	return task, nil
}

func (s *taskService) UpdateDescription(ctx context.Context, taskID uint, description string) (*models.Task, error) {
	task, err := s.repo.Task().UpdateDescription(ctx, nil, taskID, description)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// Delete removes the task and its assignments, returning the deleted row.
// Attachment cleanup is the upload subsystem's job and happens before this
// call when required.
func (s *taskService) Delete(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Task().Delete(ctx, nil, taskID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.logger.Info("Task deleted", "task_id", taskID, "project_id", task.ProjectID)

	return task, nil
}

func (s *taskService) ListByProject(ctx context.Context, projectID uint) ([]*models.Task, error) {
	exists, err := s.repo.Project().Exists(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	return s.repo.Task().ListByProject(ctx, nil, projectID, repositories.TaskFilters{})
}

func (s *taskService) getTask(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.repo.Task().GetByID(ctx, nil, taskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}
