package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/pkg/crypto"
)

const (
	// SeedEmail and SeedPassword identify the development account created by SeedData.
	SeedEmail    = "test@test.com"
	SeedPassword = "admin123"
	seedTeamName = "Test Team"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Invitation{},
		&models.ActivityLog{},
		&models.RateCounter{},
	)
}

// SeedResult reports what SeedData created.
type SeedResult struct {
	User    *models.User
	Team    *models.Team
	Created bool
}

// SeedData creates a development owner account and team. It is a no-op when the
// seed user already exists.
func SeedData(db *gorm.DB) (SeedResult, error) {
	var existing models.User
	err := db.Where("email = ?", SeedEmail).Take(&existing).Error
	if err == nil {
		return SeedResult{User: &existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SeedResult{}, fmt.Errorf("seed: lookup user: %w", err)
	}

	hash, err := crypto.HashPassword(SeedPassword)
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: hash password: %w", err)
	}

	result := SeedResult{Created: true}
	err = db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{Email: SeedEmail, PasswordHash: hash, Role: models.RoleOwner}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		team := &models.Team{Name: seedTeamName}
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TeamMember{UserID: user.ID, TeamID: team.ID, Role: models.RoleOwner}).Error; err != nil {
			return err
		}
		result.User, result.Team = user, team
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}
	return result, nil
}
