package models

import (
	"strings"
	"time"
)

// ProjectRole is the role a user holds inside a project.
//
// Only manager, member and visitor are ever persisted in project_members.
// Admin is derived from projects.created_by and NonMember is the resolver's
// answer for users with no membership row; neither is a storable value.
type ProjectRole string

const (
	RoleManager ProjectRole = "manager"
	RoleMember  ProjectRole = "member"
	RoleVisitor ProjectRole = "visitor"

	// Derived roles, never written to the membership table.
	RoleAdmin     ProjectRole = "admin"
	RoleNonMember ProjectRole = "nonmember"
)

// ParseProjectRole normalizes a role supplied by a client. Unknown or empty
// values fall back to visitor, the least privileged stored role.
func ParseProjectRole(s string) ProjectRole {
	switch ProjectRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleManager:
		return RoleManager
	case RoleMember:
		return RoleMember
	default:
		return RoleVisitor
	}
}

// IsStorable reports whether the role may be written to project_members.
func (r ProjectRole) IsStorable() bool {
	return r == RoleManager || r == RoleMember || r == RoleVisitor
}

// CanBeAssigned reports whether a member with this role may receive task
// assignments. Visitors are read-only participants.
func (r ProjectRole) CanBeAssigned() bool {
	return r == RoleManager || r == RoleMember
}

type Project struct {
	ID          uint       `json:"project_id" gorm:"primaryKey"`
	Name        string     `json:"project_name" gorm:"not null;size:255"`
	Description *string    `json:"project_description" gorm:"type:text"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedBy   uint       `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []ProjectMember `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Tasks   []Task          `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectMember struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	ProjectID uint        `json:"project_id" gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint        `json:"user_id" gorm:"not null;uniqueIndex:idx_project_user"`
	Role      ProjectRole `json:"role" gorm:"not null;size:20;default:visitor"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}

type ProjectInvitation struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	ProjectID uint        `json:"project_id" gorm:"not null;index"`
	Email     string      `json:"email" gorm:"not null;size:255"`
	Role      ProjectRole `json:"role" gorm:"not null;size:20;default:visitor"`
	InvitedBy uint        `json:"invited_by" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (ProjectInvitation) TableName() string {
	return "project_invitations"
}
