package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the service
const (
	EventProjectCreated     = "project.created"
	EventProjectMemberAdded = "project.member_added"
	EventProjectInvited     = "project.invitation_created"
	EventProjectUpdated     = "project.updated"
	EventProjectDeleted     = "project.deleted"
	EventTaskCreated        = "task.created"
	EventTaskAssigned       = "task.assigned"
	EventTaskDueDateChanged = "task.due_date_changed"
	EventTaskProgressEdited = "task.progress_edited"
	EventTaskDeleted        = "task.deleted"
)

// Topic each event type is published on
const (
	TopicProjectNotifications = "project-notifications"
	TopicTaskNotifications    = "task-notifications"
)

// Event is the envelope for every message leaving the service
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an event envelope with the standard service metadata
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "project-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes service events to the broker
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}
