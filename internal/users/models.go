package users

import (
	"time"

	"github.com/google/uuid"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

// Role of a portal account. Editors maintain borehole data, reviewers drive
// the review cycle.
type Role string

const (
	RoleEditor   Role = "editor"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// GrantsReview reports whether the role may approve borehole reviews.
func (r Role) GrantsReview() bool {
	return r == RoleReviewer || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	FullName     string    `gorm:"not null" json:"full_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null;default:'editor'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Deleting a user must not erase workflow history: both references are
	// nulled, never cascaded.
	AssignedWorkflows []workflow.Workflow       `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
	RecordedChanges   []workflow.WorkflowChange `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	ChangeAssignments []workflow.WorkflowChange `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
}

func (User) TableName() string {
	return "users"
}
