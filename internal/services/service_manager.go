package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskforge/project-service/internal/events"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Credentials and external endpoints
	JWTSecret string
	S3Bucket  string

	// Service-specific configurations
	Project   ServiceConfig
	Task      ServiceConfig
	Analytics ServiceConfig
	Chat      ServiceConfig
	Upload    ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	presigner      S3Presigner
	config         ServiceManagerConfig

	// Service instances
	authService          AuthService
	authorizationService AuthorizationService
	projectService       ProjectService
	taskService          TaskService
	analyticsService     AnalyticsService
	chatService          ChatService
	uploadService        UploadService
	notificationService  NotificationService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher, presigner S3Presigner, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
		presigner:      presigner,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher, presigner S3Presigner, jwtSecret, s3Bucket string) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		JWTSecret: jwtSecret,
		S3Bucket:  s3Bucket,

		Project: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Task: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     5 * time.Minute,
		},
		Analytics: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     1 * time.Minute,
		},
		Chat: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},
		Upload: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, eventPublisher, presigner, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	// NotificationService first, the write paths dispatch through it
	sm.notificationService = NewNotificationService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.logger.Info("Notification service initialized")

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.JWTSecret)
	sm.logger.Info("Auth service initialized")

	sm.authorizationService = NewAuthorizationService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Authorization service initialized")

	if sm.config.Project.Enabled {
		sm.projectService = NewProjectService(sm.repo, sm.db, sm.logger, sm.validator, sm.notificationService)
		sm.logger.Info("Project service initialized")
	}

	if sm.config.Task.Enabled {
		sm.taskService = NewTaskService(sm.repo, sm.db, sm.logger, sm.validator, sm.notificationService)
		sm.logger.Info("Task service initialized")
	}

	if sm.config.Analytics.Enabled {
		sm.analyticsService = NewAnalyticsService(sm.repo, sm.db, sm.logger)
		sm.logger.Info("Analytics service initialized")
	}

	if sm.config.Chat.Enabled {
		sm.chatService = NewChatService(sm.repo, sm.db, sm.logger, sm.authorizationService)
		sm.logger.Info("Chat service initialized")
	}

	if sm.config.Upload.Enabled {
		sm.uploadService = NewUploadService(sm.repo, sm.db, sm.logger, sm.validator, sm.presigner, sm.config.S3Bucket)
		sm.logger.Info("Upload service initialized")
	}

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.authService != nil {
		return sm.authService
	}

	panic("auth service not initialized")
}

func (sm *serviceManager) Authorization() AuthorizationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.authorizationService != nil {
		return sm.authorizationService
	}

	panic("authorization service not initialized")
}

func (sm *serviceManager) Project() ProjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Project.Enabled && sm.projectService != nil {
		return sm.projectService
	}

	panic("project service not enabled or not initialized")
}

func (sm *serviceManager) Task() TaskService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Task.Enabled && sm.taskService != nil {
		return sm.taskService
	}

	panic("task service not enabled or not initialized")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Analytics.Enabled && sm.analyticsService != nil {
		return sm.analyticsService
	}

	panic("analytics service not enabled or not initialized")
}

func (sm *serviceManager) Chat() ChatService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Chat.Enabled && sm.chatService != nil {
		return sm.chatService
	}

	panic("chat service not enabled or not initialized")
}

func (sm *serviceManager) Upload() UploadService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Upload.Enabled && sm.uploadService != nil {
		return sm.uploadService
	}

	panic("upload service not enabled or not initialized")
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.notificationService != nil {
		return sm.notificationService
	}

	panic("notification service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
