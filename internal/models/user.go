package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role is the permission level a user holds within a team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// MaxEmailLength bounds the addresses accepted from forms. The email column is
// wider so the soft-delete rewrite of a maximal address still fits.
const MaxEmailLength = 255

// User is an account holder. Rows are never hard deleted: DeletedAt marks a soft
// delete and the email is rewritten so the unique slot can be reused.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string `gorm:"size:100" json:"name"`
	Email        string `gorm:"size:320;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"size:20;not null;default:owner" json:"role"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	if u.Role == "" {
		u.Role = RoleOwner
	}
	return nil
}

// DeletedEmail is the address a soft-deleted account is rewritten to.
func DeletedEmail(email, id string) string {
	return fmt.Sprintf("%s-%s-deleted", email, id)
}
