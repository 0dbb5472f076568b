package models

import (
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusOngoing   TaskStatus = "Ongoing"
	StatusCompleted TaskStatus = "Completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID          uint         `json:"task_id" gorm:"primaryKey"`
	ProjectID   uint         `json:"project_id" gorm:"not null;index"`
	Name        string       `json:"task_name" gorm:"not null;size:255"`
	Description *string      `json:"task_description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"not null;size:20;default:Pending"`
	Priority    TaskPriority `json:"priority" gorm:"size:20"`
	DueDate     *time.Time   `json:"due_date"`

	// Optional pointer into the upload subsystem's ledger.
	FileAttachmentID *uint `json:"file_attachment_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignments []TaskAssignment `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (Task) TableName() string {
	return "tasks"
}

type TaskAssignment struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TaskID uint `json:"task_id" gorm:"not null;uniqueIndex:idx_task_user"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_task_user"`

	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

type FileAttachment struct {
	ID         uint   `json:"file_id" gorm:"primaryKey"`
	Key        string `json:"key" gorm:"not null;size:500"`
	FileName   string `json:"file_name" gorm:"not null;size:255"`
	UploadedBy uint   `json:"uploaded_by" gorm:"not null;index"`
	TaskID     *uint  `json:"task_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

func (FileAttachment) TableName() string {
	return "file_attachments"
}
