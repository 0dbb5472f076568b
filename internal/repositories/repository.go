package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates every sub-repository behind one handle
type Repository interface {
	// User domain
	User() UserRepository

	// Membership ledger
	Project() ProjectRepository
	Member() MemberRepository
	Invitation() InvitationRepository

	// Task domain
	Task() TaskRepository
	Assignment() AssignmentRepository

	// Read-only analytics
	Analytics() AnalyticsRepository

	// Collaboration
	Chat() ChatRepository
	Attachment() AttachmentRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
