package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityType names an audited account or team event.
type ActivityType string

const (
	ActivitySignUp           ActivityType = "SIGN_UP"
	ActivitySignIn           ActivityType = "SIGN_IN"
	ActivitySignOut          ActivityType = "SIGN_OUT"
	ActivityUpdatePassword   ActivityType = "UPDATE_PASSWORD"
	ActivityDeleteAccount    ActivityType = "DELETE_ACCOUNT"
	ActivityUpdateAccount    ActivityType = "UPDATE_ACCOUNT"
	ActivityCreateTeam       ActivityType = "CREATE_TEAM"
	ActivityRemoveMember     ActivityType = "REMOVE_TEAM_MEMBER"
	ActivityInviteMember     ActivityType = "INVITE_TEAM_MEMBER"
	ActivityAcceptInvitation ActivityType = "ACCEPT_INVITATION"
)

// ErrActivityLogImmutable is returned by any attempt to update a stored entry.
var ErrActivityLogImmutable = errors.New("activity log entries are immutable")

// ActivityLog is an append-only audit record scoped to a team.
type ActivityLog struct {
	ID        string            `gorm:"primaryKey;type:uuid" json:"id"`
	TeamID    string            `gorm:"type:uuid;not null;index" json:"team_id"`
	UserID    *string           `gorm:"type:uuid;index" json:"user_id"`
	Action    ActivityType      `gorm:"size:50;not null;index" json:"action"`
	IPAddress string            `gorm:"size:45" json:"ip_address"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	Timestamp time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

func (a *ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}
