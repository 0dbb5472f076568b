package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
)

const defaultHistoryLimit = 200

type chatService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	authz  AuthorizationService
}

func NewChatService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, authz AuthorizationService) ChatService {
	return &chatService{
		repo:   repo,
		db:     db,
		logger: logger,
		authz:  authz,
	}
}

// SaveMessage persists one chat line. Any project participant may post,
// visitors included; outsiders may not.
func (s *chatService) SaveMessage(ctx context.Context, projectID, userID uint, text string) (*ChatMessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validator.ValidationErrors{{Field: "message", Message: "is required", Rule: "required"}}
	}

	if err := s.authz.Authorize(ctx,
		AccessContext{UserID: userID, ProjectID: projectID},
		models.RoleManager, models.RoleMember, models.RoleVisitor); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ProjectID: projectID,
		UserID:    userID,
		Message:   text,
	}
	if err := s.repo.Chat().Create(ctx, nil, message); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	return &ChatMessageResponse{
		ID:        message.ID,
		ProjectID: message.ProjectID,
		UserID:    message.UserID,
		Username:  user.Username,
		Message:   message.Message,
		CreatedAt: message.CreatedAt,
	}, nil
}

func (s *chatService) History(ctx context.Context, projectID uint, limit int) ([]*ChatMessageResponse, error) {
	exists, err := s.repo.Project().Exists(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	messages, err := s.repo.Chat().ListByProject(ctx, nil, projectID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp := &ChatMessageResponse{
			ID:        m.ID,
			ProjectID: m.ProjectID,
			UserID:    m.UserID,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		}
		if m.User != nil {
			resp.Username = m.User.Username
		}
		responses = append(responses, resp)
	}

	return responses, nil
}
