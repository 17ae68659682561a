package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is the tenant boundary. Billing fields are owned by the payment collaborator
// and stay empty until a checkout completes.
type Team struct {
	BaseModel

	Name string `gorm:"size:100;not null" json:"name"`

	BillingCustomerID  *string `gorm:"uniqueIndex" json:"billing_customer_id,omitempty"`
	SubscriptionID     *string `gorm:"uniqueIndex" json:"subscription_id,omitempty"`
	ProductID          *string `json:"product_id,omitempty"`
	PlanName           string  `gorm:"size:50" json:"plan_name"`
	SubscriptionStatus string  `gorm:"size:20" json:"subscription_status"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_user_team" json:"user_id"`
	TeamID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_user_team;index" json:"team_id"`
	Role     Role      `gorm:"size:50;not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	m.ID = ensureID(m.ID)
	return nil
}
