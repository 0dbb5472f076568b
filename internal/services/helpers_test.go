package services

import (
	"io"
	"log/slog"

	"github.com/taskforge/project-service/internal/events"
	"github.com/taskforge/project-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv bundles the pieces most service tests need
type testEnv struct {
	repo      *mockRepo
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func newTestEnv() *testEnv {
	logger := testLogger()
	return &testEnv{
		repo:      newMockRepo(),
		publisher: events.NewMockEventPublisher(logger),
		validator: validator.New(),
		logger:    logger,
	}
}

func (e *testEnv) notifications() NotificationService {
	return NewNotificationService(e.repo, e.publisher, e.logger, e.validator)
}

func (e *testEnv) authorization() AuthorizationService {
	return NewAuthorizationService(e.repo, nil, e.logger)
}

func (e *testEnv) projectService() ProjectService {
	return NewProjectService(e.repo, nil, e.logger, e.validator, e.notifications())
}

func (e *testEnv) taskService() TaskService {
	return NewTaskService(e.repo, nil, e.logger, e.validator, e.notifications())
}

func (e *testEnv) analyticsService() AnalyticsService {
	return NewAnalyticsService(e.repo, nil, e.logger)
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.repo, nil, e.logger, e.validator, "test-secret")
}

func (e *testEnv) chatService() ChatService {
	return NewChatService(e.repo, nil, e.logger, e.authorization())
}

// eventTypes projects the recorded events down to their type strings
func (e *testEnv) eventTypes() []string {
	published := e.publisher.GetPublishedEvents()
	types := make([]string, 0, len(published))
	for _, ev := range published {
		types = append(types, ev.Type)
	}
	return types
}
