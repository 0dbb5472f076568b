package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskforge/project-service/internal/events"
	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
)

// notificationEventService publishes post-commit notification events. Email
// and calendar workers consume them downstream; this side never waits for
// them and never fails the request that triggered the event.
type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) NotificationService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// ===== EVENT PAYLOADS =====

type ProjectCreatedEvent struct {
	ProjectID          uint             `json:"project_id"`
	ProjectName        string           `json:"project_name"`
	AdminID            uint             `json:"admin_id"`
	MembersAdded       []MemberInfo     `json:"members_added"`
	InvitationsCreated []InvitationInfo `json:"invitations_created"`
}

type TaskCreatedEvent struct {
	TaskID      uint         `json:"task_id"`
	TaskName    string       `json:"task_name"`
	ProjectID   uint         `json:"project_id"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	AssigneeIDs []uint       `json:"assignee_ids"`
	Assignees   []MemberInfo `json:"assignees"`
}

type TaskAssignedEvent struct {
	TaskID     uint   `json:"task_id"`
	TaskName   string `json:"task_name"`
	ProjectID  uint   `json:"project_id"`
	AssigneeID uint   `json:"assignee_id"`
}

type DueDateChangedEvent struct {
	TaskID      uint       `json:"task_id"`
	TaskName    string     `json:"task_name"`
	ProjectID   uint       `json:"project_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeIDs []uint     `json:"assignee_ids"`
}

type ProgressEditedEvent struct {
	TaskID       uint              `json:"task_id"`
	TaskName     string            `json:"task_name"`
	Status       models.TaskStatus `json:"status"`
	ProjectID    uint              `json:"project_id"`
	ProjectName  string            `json:"project_name"`
	RecipientIDs []uint            `json:"recipient_ids"`
}

// ===== DISPATCH =====

func (s *notificationEventService) ProjectCreated(ctx context.Context, result *ProjectMutationResult) {
	if result == nil || result.Project == nil {
		return
	}

	s.publish(ctx, events.TopicProjectNotifications, events.NewEvent(events.EventProjectCreated, &ProjectCreatedEvent{
		ProjectID:          result.Project.ID,
		ProjectName:        result.Project.Name,
		AdminID:            result.Project.CreatedBy,
		MembersAdded:       result.MembersAdded,
		InvitationsCreated: result.InvitationsCreated,
	}))
}

func (s *notificationEventService) MembersAdded(ctx context.Context, result *ProjectMutationResult) {
	if result == nil || result.Project == nil {
		return
	}
	if len(result.MembersAdded) == 0 && len(result.InvitationsCreated) == 0 {
		return
	}

	eventType := events.EventProjectMemberAdded
	if len(result.MembersAdded) == 0 {
		eventType = events.EventProjectInvited
	}

	s.publish(ctx, events.TopicProjectNotifications, events.NewEvent(eventType, &ProjectCreatedEvent{
		ProjectID:          result.Project.ID,
		ProjectName:        result.Project.Name,
		AdminID:            result.Project.CreatedBy,
		MembersAdded:       result.MembersAdded,
		InvitationsCreated: result.InvitationsCreated,
	}))
}

func (s *notificationEventService) TasksCreated(ctx context.Context, tasks []*TaskResponse) {
	for _, t := range tasks {
		if t == nil || t.Task == nil {
			continue
		}

		assigneeIDs := make([]uint, 0, len(t.Assignees))
		for _, a := range t.Assignees {
			assigneeIDs = append(assigneeIDs, a.UserID)
		}

		s.publish(ctx, events.TopicTaskNotifications, events.NewEvent(events.EventTaskCreated, &TaskCreatedEvent{
			TaskID:      t.Task.ID,
			TaskName:    t.Task.Name,
			ProjectID:   t.Task.ProjectID,
			DueDate:     t.Task.DueDate,
			AssigneeIDs: assigneeIDs,
			Assignees:   t.Assignees,
		}))
	}
}

func (s *notificationEventService) TaskAssigned(ctx context.Context, task *models.Task, assigneeID uint) {
	if task == nil {
		return
	}

	s.publish(ctx, events.TopicTaskNotifications, events.NewEvent(events.EventTaskAssigned, &TaskAssignedEvent{
		TaskID:     task.ID,
		TaskName:   task.Name,
		ProjectID:  task.ProjectID,
		AssigneeID: assigneeID,
	}))
}

func (s *notificationEventService) DueDateChanged(ctx context.Context, task *models.Task) {
	if task == nil {
		return
	}

	assignments, err := s.repo.Assignment().ListByTask(ctx, nil, task.ID)
	if err != nil {
		s.logger.Error("Failed to load assignees for due date notification", "error", err, "task_id", task.ID)
		return
	}

	assigneeIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		assigneeIDs = append(assigneeIDs, a.UserID)
	}

	s.publish(ctx, events.TopicTaskNotifications, events.NewEvent(events.EventTaskDueDateChanged, &DueDateChangedEvent{
		TaskID:      task.ID,
		TaskName:    task.Name,
		ProjectID:   task.ProjectID,
		DueDate:     task.DueDate,
		AssigneeIDs: assigneeIDs,
	}))
}

// ProgressEdited notifies the people steering the project: every manager
// plus the admin. The project row is fetched here rather than trusted from
// handler state so the name and admin id are always current.
func (s *notificationEventService) ProgressEdited(ctx context.Context, taskID uint) {
	task, err := s.repo.Task().GetByID(ctx, nil, taskID)
	if err != nil {
		s.logger.Error("Failed to load task for progress notification", "error", err, "task_id", taskID)
		return
	}

	project, err := s.repo.Project().GetByID(ctx, nil, task.ProjectID)
	if err != nil {
		s.logger.Error("Failed to load project for progress notification", "error", err, "project_id", task.ProjectID)
		return
	}

	members, err := s.repo.Member().ListByProject(ctx, nil, project.ID)
	if err != nil {
		s.logger.Error("Failed to load members for progress notification", "error", err, "project_id", project.ID)
		return
	}

	recipients := []uint{project.CreatedBy}
	for _, m := range members {
		if m.Role == models.RoleManager {
			recipients = append(recipients, m.UserID)
		}
	}

	s.publish(ctx, events.TopicTaskNotifications, events.NewEvent(events.EventTaskProgressEdited, &ProgressEditedEvent{
		TaskID:       task.ID,
		TaskName:     task.Name,
		Status:       task.Status,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		RecipientIDs: recipients,
	}))
}

// publish is the single swallow point: a broker failure is logged and
// dropped, never returned.
func (s *notificationEventService) publish(ctx context.Context, topic string, event *events.Event) {
	if err := s.eventPublisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("Failed to publish notification event",
			"error", err, "topic", topic, "event_type", event.Type)
	}
}
