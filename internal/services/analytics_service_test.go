package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/taskforge/project-service/internal/models"
)

func TestProgress(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	empty := env.repo.addProject("empty", creator.ID)
	busy := env.repo.addProject("busy", creator.ID)
	env.repo.addTask(busy.ID, "a", models.StatusCompleted)
	env.repo.addTask(busy.ID, "b", models.StatusCompleted)
	env.repo.addTask(busy.ID, "c", models.StatusOngoing)
	env.repo.addTask(busy.ID, "d", models.StatusPending)

	svc := env.analyticsService()

	tests := []struct {
		name          string
		projectID     uint
		wantProgress  string
		wantTotal     int64
		wantCompleted int64
		wantOngoing   int64
		wantPending   int64
	}{
		{"no tasks", empty.ID, "0.00", 0, 0, 0, 0},
		{"half completed", busy.ID, "50.00", 4, 2, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Progress(context.Background(), tt.projectID)
			if err != nil {
				t.Fatalf("Progress() error: %v", err)
			}
			if got.Progress != tt.wantProgress {
				t.Errorf("progress = %s, want %s", got.Progress, tt.wantProgress)
			}
			if got.TotalTask != tt.wantTotal || got.CompletedTask != tt.wantCompleted ||
				got.OngoingTask != tt.wantOngoing || got.PendingTask != tt.wantPending {
				t.Errorf("counts = %+v", got)
			}
		})
	}

	if _, err := svc.Progress(context.Background(), 404); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Progress() unknown project = %v, want ErrProjectNotFound", err)
	}
}

func TestWorkload(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	bob := env.repo.addUser("bob", "bob@example.com")
	carol := env.repo.addUser("carol", "carol@example.com")
	project := env.repo.addProject("apollo", creator.ID)

	t1 := env.repo.addTask(project.ID, "one", models.StatusPending)
	t2 := env.repo.addTask(project.ID, "two", models.StatusPending)
	t3 := env.repo.addTask(project.ID, "three", models.StatusPending)
	t4 := env.repo.addTask(project.ID, "four", models.StatusPending)
	env.repo.addAssignment(t1.ID, bob.ID)
	env.repo.addAssignment(t2.ID, bob.ID)
	env.repo.addAssignment(t3.ID, bob.ID)
	env.repo.addAssignment(t4.ID, carol.ID)
	// Shared task: percentages are over distinct assigned tasks, so shares
	// may sum past 100
	env.repo.addAssignment(t1.ID, carol.ID)

	entries, err := env.analyticsService().Workload(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("Workload() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	// Heaviest first
	if entries[0].Username != "bob" || entries[0].TaskCount != 3 || entries[0].Percentage != "75.00" {
		t.Errorf("first entry = %+v, want bob with 3 tasks at 75.00", entries[0])
	}
	if entries[1].Username != "carol" || entries[1].TaskCount != 2 || entries[1].Percentage != "50.00" {
		t.Errorf("second entry = %+v, want carol with 2 tasks at 50.00", entries[1])
	}
}

func TestWorkloadErrors(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	project := env.repo.addProject("apollo", creator.ID)
	env.repo.addTask(project.ID, "unassigned", models.StatusPending)

	svc := env.analyticsService()

	if _, err := svc.Workload(context.Background(), project.ID); !errors.Is(err, ErrNoAssignments) {
		t.Errorf("Workload() without assignments = %v, want ErrNoAssignments", err)
	}
	if _, err := svc.Workload(context.Background(), 404); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Workload() unknown project = %v, want ErrProjectNotFound", err)
	}
}

func TestExportWorkload(t *testing.T) {
	env := newTestEnv()
	creator := env.repo.addUser("alice", "alice@example.com")
	bob := env.repo.addUser("bob", "bob@example.com")
	project := env.repo.addProject("apollo", creator.ID)
	task := env.repo.addTask(project.ID, "one", models.StatusPending)
	env.repo.addAssignment(task.ID, bob.ID)

	svc := env.analyticsService()

	data, err := svc.ExportWorkload(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ExportWorkload() error: %v", err)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("export does not look like an xlsx workbook, first bytes: %v", data[:min(4, len(data))])
	}

	if _, err := svc.ExportWorkload(context.Background(), 404); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("ExportWorkload() unknown project = %v, want ErrProjectNotFound", err)
	}
}
