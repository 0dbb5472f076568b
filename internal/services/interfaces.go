package services

import (
	"context"
	"time"

	"github.com/taskforge/project-service/internal/models"
)

// ===== ACCESS CONTROL =====

// AccessContext carries everything the resolver needs to decide a request.
// TaskID is only set on routes that address a single task; TaskScoped marks
// routes where members must additionally hold an assignment for that task.
type AccessContext struct {
	UserID     uint
	ProjectID  uint
	TaskID     *uint
	TaskScoped bool
}

type AuthorizationService interface {
	// Resolve computes the effective role of a user within a project.
	// Returns RoleAdmin for the creator, the stored role for members,
	// RoleNonMember otherwise. ErrProjectNotFound if the project is gone.
	Resolve(ctx context.Context, userID, projectID uint) (models.ProjectRole, error)

	// Authorize decides allow/deny for an access context against the set
	// of allowed stored roles. Admin always passes. Members on task-scoped
	// operations additionally need an assignment row for the exact task.
	Authorize(ctx context.Context, access AccessContext, allowed ...models.ProjectRole) error
}

// ===== AUTH =====

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type TokenClaims struct {
	UserID uint
	Email  string
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ParseToken(token string) (*TokenClaims, error)
}

// ===== PROJECTS =====

// AssigneeRequest names a person to pull into a project. An email matching
// an existing user becomes a membership row; anything else becomes an
// invitation.
type AssigneeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,project_role"`
}

type CreateProjectRequest struct {
	Name        string            `json:"project_name" validate:"required,max=255"`
	Description *string           `json:"project_description" validate:"omitempty,max=5000"`
	StartDate   *time.Time        `json:"start_date" validate:"required"`
	EndDate     *time.Time        `json:"end_date" validate:"required"`
	Assignees   []AssigneeRequest `json:"assignees" validate:"omitempty,dive"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"project_name" validate:"omitempty,max=255"`
	Description *string    `json:"project_description" validate:"omitempty,max=5000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// MemberInfo is one resolved member in a mutation result or project view
type MemberInfo struct {
	UserID   uint               `json:"user_id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     models.ProjectRole `json:"role"`
}

type InvitationInfo struct {
	Email string             `json:"email"`
	Role  models.ProjectRole `json:"role"`
}

// ProjectMutationResult is what a committed project write hands to the
// notification dispatcher: the project plus the partition of requested
// assignees into memberships and invitations.
type ProjectMutationResult struct {
	Project            *models.Project  `json:"project"`
	MembersAdded       []MemberInfo     `json:"membersAdded"`
	InvitationsCreated []InvitationInfo `json:"invitationsCreated"`
}

// ProjectDetailResponse is the full view of one project for a requester
type ProjectDetailResponse struct {
	Project  *models.Project    `json:"project"`
	Members  []MemberInfo       `json:"members"`
	UserRole models.ProjectRole `json:"userRole"`
}

type ProjectService interface {
	Create(ctx context.Context, req *CreateProjectRequest, createdBy uint) (*ProjectMutationResult, error)
	AddMembers(ctx context.Context, projectID uint, assignees []AssigneeRequest, invitedBy uint) (*ProjectMutationResult, error)
	Update(ctx context.Context, projectID uint, req *UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, projectID uint) (*models.Project, error)
	GetByID(ctx context.Context, projectID, requesterID uint) (*ProjectDetailResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Project, error)
}

// ===== TASKS =====

type CreateTaskRequest struct {
	ProjectID   uint       `json:"project_id" validate:"required"`
	Name        string     `json:"task_name" validate:"required,max=255"`
	Description *string    `json:"task_description" validate:"omitempty,max=5000"`
	Status      string     `json:"status" validate:"omitempty,task_status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`

	// Usernames to assign. Names that resolve to visitors or non-members
	// are skipped without failing the batch.
	AssignedMembers []string `json:"assigned_members"`
}

// TaskResponse is a created task plus the assignments that actually stuck
type TaskResponse struct {
	Task      *models.Task `json:"task"`
	Assignees []MemberInfo `json:"assignees"`
}

type TaskService interface {
	// CreateTasks persists the whole batch or none of it.
	CreateTasks(ctx context.Context, reqs []CreateTaskRequest, createdBy uint) ([]*TaskResponse, error)
	AddAssignee(ctx context.Context, projectID, taskID, assigneeID, actingUserID uint) (*models.TaskAssignment, error)
	EditProgress(ctx context.Context, taskID uint, status string) (*models.Task, error)
	UpdateDueDate(ctx context.Context, taskID uint, dueDate time.Time) (*models.Task, error)
	UpdateDescription(ctx context.Context, taskID uint, description string) (*models.Task, error)
	Delete(ctx context.Context, taskID uint) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uint) ([]*models.Task, error)
}

// ===== ANALYTICS =====

type ProgressResponse struct {
	Progress      string `json:"progress"`
	TotalTask     int64  `json:"totalTask"`
	CompletedTask int64  `json:"completedTask"`
	OngoingTask   int64  `json:"ongoingTask"`
	PendingTask   int64  `json:"pendingTask"`
}

type WorkloadEntry struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	TaskCount  int64  `json:"taskCount"`
	Percentage string `json:"percentage"`
}

type AnalyticsService interface {
	Progress(ctx context.Context, projectID uint) (*ProgressResponse, error)
	// Workload returns per-user shares of the project's distinct assigned
	// tasks. ErrNoAssignments when nothing is assigned yet.
	Workload(ctx context.Context, projectID uint) ([]*WorkloadEntry, error)
	// ExportWorkload renders the workload table as an xlsx workbook.
	ExportWorkload(ctx context.Context, projectID uint) ([]byte, error)
}

// ===== CHAT =====

type ChatMessageResponse struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatService interface {
	SaveMessage(ctx context.Context, projectID, userID uint, text string) (*ChatMessageResponse, error)
	History(ctx context.Context, projectID uint, limit int) ([]*ChatMessageResponse, error)
}

// ===== UPLOADS =====

type PresignUploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	// Kind selects the key prefix: "profile" or "task"
	Kind   string `json:"kind" validate:"required,oneof=profile task"`
	TaskID *uint  `json:"task_id"`
}

type PresignResponse struct {
	FileID uint   `json:"file_id,omitempty"`
	Key    string `json:"key"`
	URL    string `json:"url"`
	// Seconds until the URL stops working
	ExpiresIn int64 `json:"expires_in"`
}

type UploadService interface {
	PresignUpload(ctx context.Context, req *PresignUploadRequest, userID uint) (*PresignResponse, error)
	PresignDownload(ctx context.Context, fileID uint) (*PresignResponse, error)
}

// ===== NOTIFICATIONS =====

// NotificationService is the post-commit dispatch boundary. Every method is
// best-effort: failures are logged and swallowed, never surfaced to the
// caller, and the triggering transaction has already committed.
type NotificationService interface {
	ProjectCreated(ctx context.Context, result *ProjectMutationResult)
	MembersAdded(ctx context.Context, result *ProjectMutationResult)
	TasksCreated(ctx context.Context, tasks []*TaskResponse)
	TaskAssigned(ctx context.Context, task *models.Task, assigneeID uint)
	DueDateChanged(ctx context.Context, task *models.Task)
	ProgressEdited(ctx context.Context, taskID uint)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Authorization() AuthorizationService
	Project() ProjectService
	Task() TaskService
	Analytics() AnalyticsService
	Chat() ChatService
	Upload() UploadService
	Notification() NotificationService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
