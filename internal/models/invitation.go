package models

import "time"

// InvitationStatus moves one way: pending -> accepted.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation grants an email address a seat on a team at sign-up time.
type Invitation struct {
	BaseModel

	TeamID    string           `gorm:"type:uuid;not null;index" json:"team_id"`
	Email     string           `gorm:"size:255;not null;index" json:"email"`
	Role      Role             `gorm:"size:50;not null" json:"role"`
	InvitedBy string           `gorm:"type:uuid;not null" json:"invited_by"`
	Status    InvitationStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	InvitedAt time.Time        `gorm:"autoCreateTime" json:"invited_at"`

	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}
