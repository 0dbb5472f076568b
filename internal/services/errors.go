package services

import (
	"errors"
	"fmt"

	"github.com/taskforge/project-service/internal/validator"
)

// ValidationErrors re-exported so handlers can errors.As against the
// service boundary without importing the validator package
type ValidationErrors = validator.ValidationErrors

// Sentinel errors surfaced across the service boundary
var (
	// Not found
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrMemberNotFound     = errors.New("project member not found")
	ErrAttachmentNotFound = errors.New("file attachment not found")
	ErrNoAssignments      = errors.New("no task assignments found for project")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")

	// Authorization
	ErrForbidden = errors.New("forbidden")

	// Conflict
	ErrDuplicateAssignment = errors.New("user is already assigned to this task")

	// Validation
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidStatus    = errors.New("invalid task status")

	// Dependencies
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// PermissionError carries the context of an authorization denial
type PermissionError struct {
	UserID    uint
	ProjectID uint
	Resource  string
	Action    string
	Reason    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d denied %s on %s %d: %s", e.UserID, e.Action, e.Resource, e.ProjectID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, projectID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:    userID,
		ProjectID: projectID,
		Resource:  resource,
		Action:    action,
		Reason:    reason,
	}
}
