package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/models"
)

// ===== FILTERS AND PROJECTIONS =====

// UserFilters for listing/searching users
type UserFilters struct {
	Query  string
	Limit  int
	Offset int
}

// TaskFilters for listing tasks within a project
type TaskFilters struct {
	Status   *models.TaskStatus
	DueFrom  *time.Time
	DueTo    *time.Time
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// TaskStatusCounts holds the per-status task totals for a project
type TaskStatusCounts struct {
	Total     int64
	Pending   int64
	Ongoing   int64
	Completed int64
}

// WorkloadRow is one user's slice of a project's assignment workload
type WorkloadRow struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TaskCount int64  `json:"task_count"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	GetByUsernames(ctx context.Context, tx *gorm.DB, usernames []string) ([]*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, project *models.Project) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error)
	GetByIDWithMembers(ctx context.Context, tx *gorm.DB, id uint) (*models.Project, error)
	// ListByUser returns projects the user created or belongs to.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Project, error)
	Update(ctx context.Context, tx *gorm.DB, project *models.Project) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type MemberRepository interface {
	// Upsert inserts the membership row or, when the (project_id, user_id)
	// pair already exists, updates its role in the same statement.
	Upsert(ctx context.Context, tx *gorm.DB, member *models.ProjectMember) error
	Get(ctx context.Context, tx *gorm.DB, projectID, userID uint) (*models.ProjectMember, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectMember, error)
	Delete(ctx context.Context, tx *gorm.DB, projectID, userID uint) error
}

type InvitationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, invitation *models.ProjectInvitation) error
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]*models.ProjectInvitation, error)
	ListByEmail(ctx context.Context, tx *gorm.DB, email string) ([]*models.ProjectInvitation, error)
}

type TaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *models.Task) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, filters TaskFilters) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TaskStatus) (*models.Task, error)
	UpdateDueDate(ctx context.Context, tx *gorm.DB, id uint, dueDate time.Time) (*models.Task, error)
	UpdateDescription(ctx context.Context, tx *gorm.DB, id uint, description string) (*models.Task, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.TaskAssignment) error
	Exists(ctx context.Context, tx *gorm.DB, taskID, userID uint) (bool, error)
	ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.TaskAssignment, error)
	DeleteByTask(ctx context.Context, tx *gorm.DB, taskID uint) error
}

type AnalyticsRepository interface {
	TaskStatusCounts(ctx context.Context, tx *gorm.DB, projectID uint) (*TaskStatusCounts, error)
	// WorkloadRows groups the project's task assignments per user, ordered
	// by task count, heaviest first.
	WorkloadRows(ctx context.Context, tx *gorm.DB, projectID uint) ([]*WorkloadRow, error)
	DistinctAssignedTasks(ctx context.Context, tx *gorm.DB, projectID uint) (int64, error)
}

type ChatRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.ChatMessage) error
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uint, limit int) ([]*models.ChatMessage, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attachment *models.FileAttachment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.FileAttachment, error)
	ListByTask(ctx context.Context, tx *gorm.DB, taskID uint) ([]*models.FileAttachment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
