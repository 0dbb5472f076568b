package services

import (
	"context"
	"errors"
	"testing"

	"github.com/taskforge/project-service/internal/events"
	"github.com/taskforge/project-service/internal/models"
)

func TestMembersAddedEventType(t *testing.T) {
	env := newTestEnv()
	notifications := env.notifications()
	project := &models.Project{ID: 1, Name: "apollo", CreatedBy: 7}

	tests := []struct {
		name     string
		result   *ProjectMutationResult
		wantType string
	}{
		{
			"members present",
			&ProjectMutationResult{
				Project:            project,
				MembersAdded:       []MemberInfo{{UserID: 2, Role: models.RoleMember}},
				InvitationsCreated: []InvitationInfo{{Email: "new@example.com"}},
			},
			events.EventProjectMemberAdded,
		},
		{
			"invitations only",
			&ProjectMutationResult{
				Project:            project,
				InvitationsCreated: []InvitationInfo{{Email: "new@example.com"}},
			},
			events.EventProjectInvited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.publisher.ClearEvents()
			notifications.MembersAdded(context.Background(), tt.result)

			published := env.publisher.GetPublishedEvents()
			if len(published) != 1 || published[0].Type != tt.wantType {
				t.Errorf("published = %v, want one %s", env.eventTypes(), tt.wantType)
			}
		})
	}

	// Nothing resolved, nothing announced
	env.publisher.ClearEvents()
	notifications.MembersAdded(context.Background(), &ProjectMutationResult{Project: project})
	if got := len(env.publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("events for an empty mutation = %d, want 0", got)
	}
}

func TestProgressEditedRecipients(t *testing.T) {
	env := newTestEnv()
	admin := env.repo.addUser("alice", "alice@example.com")
	mona := env.repo.addUser("mona", "mona@example.com")
	max := env.repo.addUser("max", "max@example.com")
	bob := env.repo.addUser("bob", "bob@example.com")
	vera := env.repo.addUser("vera", "vera@example.com")
	project := env.repo.addProject("apollo", admin.ID)
	env.repo.addMember(project.ID, mona.ID, models.RoleManager)
	env.repo.addMember(project.ID, max.ID, models.RoleManager)
	env.repo.addMember(project.ID, bob.ID, models.RoleMember)
	env.repo.addMember(project.ID, vera.ID, models.RoleVisitor)
	task := env.repo.addTask(project.ID, "write docs", models.StatusOngoing)

	env.notifications().ProgressEdited(context.Background(), task.ID)

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("published = %d events, want 1", len(published))
	}
	payload, ok := published[0].Data.(*ProgressEditedEvent)
	if !ok {
		t.Fatalf("payload type %T", published[0].Data)
	}

	// Admin first, then every manager; members and visitors are left out
	want := []uint{admin.ID, mona.ID, max.ID}
	if len(payload.RecipientIDs) != len(want) {
		t.Fatalf("recipients = %v, want %v", payload.RecipientIDs, want)
	}
	for i, id := range want {
		if payload.RecipientIDs[i] != id {
			t.Errorf("recipient[%d] = %d, want %d", i, payload.RecipientIDs[i], id)
		}
	}
	if payload.ProjectName != "apollo" {
		t.Errorf("project name = %s", payload.ProjectName)
	}
}

func TestProgressEditedUnknownTask(t *testing.T) {
	env := newTestEnv()

	env.notifications().ProgressEdited(context.Background(), 404)

	if got := len(env.publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("events for a missing task = %d, want 0", got)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	env := newTestEnv()
	env.publisher.FailNext = errors.New("broker down")

	// The dispatch boundary must not panic or surface the error
	env.notifications().ProjectCreated(context.Background(), &ProjectMutationResult{
		Project: &models.Project{ID: 1, Name: "apollo", CreatedBy: 1},
	})

	if got := len(env.publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("events recorded = %d, want 0", got)
	}
}
