package services

import (
	"context"
	"errors"
	"testing"

	"github.com/taskforge/project-service/internal/models"
)

func TestResolve(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	manager := env.repo.addUser("bob", "bob@example.com")
	visitor := env.repo.addUser("carol", "carol@example.com")
	outsider := env.repo.addUser("dave", "dave@example.com")
	project := env.repo.addProject("apollo", creator.ID)
	env.repo.addMember(project.ID, manager.ID, models.RoleManager)
	env.repo.addMember(project.ID, visitor.ID, models.RoleVisitor)

	// A stray membership row for the creator must not shadow ownership
	env.repo.addMember(project.ID, creator.ID, models.RoleVisitor)

	svc := env.authorization()

	tests := []struct {
		name      string
		userID    uint
		projectID uint
		want      models.ProjectRole
		wantErr   error
	}{
		{name: "creator is admin", userID: creator.ID, projectID: project.ID, want: models.RoleAdmin},
		{name: "stored manager role", userID: manager.ID, projectID: project.ID, want: models.RoleManager},
		{name: "stored visitor role", userID: visitor.ID, projectID: project.ID, want: models.RoleVisitor},
		{name: "no membership row", userID: outsider.ID, projectID: project.ID, want: models.RoleNonMember},
		{name: "unknown project", userID: creator.ID, projectID: 999, want: models.RoleNonMember, wantErr: ErrProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(context.Background(), tt.userID, tt.projectID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	manager := env.repo.addUser("bob", "bob@example.com")
	member := env.repo.addUser("carol", "carol@example.com")
	visitor := env.repo.addUser("dave", "dave@example.com")
	outsider := env.repo.addUser("eve", "eve@example.com")
	project := env.repo.addProject("apollo", creator.ID)
	env.repo.addMember(project.ID, manager.ID, models.RoleManager)
	env.repo.addMember(project.ID, member.ID, models.RoleMember)
	env.repo.addMember(project.ID, visitor.ID, models.RoleVisitor)

	assignedTask := env.repo.addTask(project.ID, "write docs", models.StatusPending)
	otherTask := env.repo.addTask(project.ID, "review docs", models.StatusPending)
	env.repo.addAssignment(assignedTask.ID, member.ID)

	svc := env.authorization()

	tests := []struct {
		name     string
		access   AccessContext
		allowed  []models.ProjectRole
		wantDeny bool
	}{
		{
			name:    "admin passes any role gate",
			access:  AccessContext{UserID: creator.ID, ProjectID: project.ID},
			allowed: []models.ProjectRole{models.RoleManager},
		},
		{
			name:    "admin passes task scope without assignment",
			access:  AccessContext{UserID: creator.ID, ProjectID: project.ID, TaskID: &otherTask.ID, TaskScoped: true},
			allowed: []models.ProjectRole{models.RoleManager, models.RoleMember},
		},
		{
			name:     "non-member denied",
			access:   AccessContext{UserID: outsider.ID, ProjectID: project.ID},
			allowed:  []models.ProjectRole{models.RoleManager, models.RoleMember, models.RoleVisitor},
			wantDeny: true,
		},
		{
			name:     "role outside allowed set denied",
			access:   AccessContext{UserID: visitor.ID, ProjectID: project.ID},
			allowed:  []models.ProjectRole{models.RoleManager, models.RoleMember},
			wantDeny: true,
		},
		{
			name:    "manager skips task-scope gate",
			access:  AccessContext{UserID: manager.ID, ProjectID: project.ID, TaskID: &otherTask.ID, TaskScoped: true},
			allowed: []models.ProjectRole{models.RoleManager, models.RoleMember},
		},
		{
			name:    "assigned member passes task scope",
			access:  AccessContext{UserID: member.ID, ProjectID: project.ID, TaskID: &assignedTask.ID, TaskScoped: true},
			allowed: []models.ProjectRole{models.RoleManager, models.RoleMember},
		},
		{
			name:     "unassigned member denied on task scope",
			access:   AccessContext{UserID: member.ID, ProjectID: project.ID, TaskID: &otherTask.ID, TaskScoped: true},
			allowed:  []models.ProjectRole{models.RoleManager, models.RoleMember},
			wantDeny: true,
		},
		{
			name:     "member denied when task id is missing on task-scoped route",
			access:   AccessContext{UserID: member.ID, ProjectID: project.ID, TaskScoped: true},
			allowed:  []models.ProjectRole{models.RoleManager, models.RoleMember},
			wantDeny: true,
		},
		{
			name:    "member passes non-task-scoped route",
			access:  AccessContext{UserID: member.ID, ProjectID: project.ID},
			allowed: []models.ProjectRole{models.RoleManager, models.RoleMember},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(context.Background(), tt.access, tt.allowed...)
			if tt.wantDeny {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("Authorize() error = %v, want a forbidden error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authorize() unexpected error: %v", err)
			}
		})
	}
}

func TestAuthorizeUnknownProject(t *testing.T) {
	env := newTestEnv()
	user := env.repo.addUser("alice", "alice@example.com")

	err := env.authorization().Authorize(context.Background(),
		AccessContext{UserID: user.ID, ProjectID: 42},
		models.RoleManager)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("Authorize() error = %v, want ErrProjectNotFound", err)
	}
}

func TestAuthorizeReflectsRoleChanges(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	user := env.repo.addUser("bob", "bob@example.com")
	project := env.repo.addProject("apollo", creator.ID)
	member := env.repo.addMember(project.ID, user.ID, models.RoleVisitor)

	svc := env.authorization()
	access := AccessContext{UserID: user.ID, ProjectID: project.ID}

	if err := svc.Authorize(context.Background(), access, models.RoleManager); !errors.Is(err, ErrForbidden) {
		t.Fatalf("visitor should be denied manager gate, got %v", err)
	}

	// Promote and re-check: no caching between calls
	member.Role = models.RoleManager

	if err := svc.Authorize(context.Background(), access, models.RoleManager); err != nil {
		t.Fatalf("promoted manager should pass, got %v", err)
	}
}
