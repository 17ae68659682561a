package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
)

// UserWithTeam pairs a user with the team it belongs to. TeamID is empty when
// the user has no membership.
type UserWithTeam struct {
	User   *models.User
	TeamID string
	Role   models.Role
}

// UserService reads and writes account rows. Soft-deleted users are invisible to
// every lookup.
type UserService struct {
	db *gorm.DB
}

// GetByID returns the active user with id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ensureContext(ctx)).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: get by id: %w", err)
	}
	return &user, nil
}

// GetByEmail returns the active user with the given address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ensureContext(ctx)).First(&user, "email = ?", normaliseEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: get by email: %w", err)
	}
	return &user, nil
}

// GetByEmailWithTeam looks a user up by email and attaches its team membership, if any.
func (s *UserService) GetByEmailWithTeam(ctx context.Context, email string) (*UserWithTeam, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.attachTeam(ctx, user)
}

// GetWithTeam returns the user with id and its team membership, if any.
func (s *UserService) GetWithTeam(ctx context.Context, id string) (*UserWithTeam, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachTeam(ctx, user)
}

func (s *UserService) attachTeam(ctx context.Context, user *models.User) (*UserWithTeam, error) {
	result := &UserWithTeam{User: user}

	var member models.TeamMember
	err := s.db.WithContext(ensureContext(ctx)).
		Where("user_id = ?", user.ID).
		Order("joined_at ASC").
		Limit(1).
		Find(&member).Error
	if err != nil {
		return nil, fmt.Errorf("user service: load membership: %w", err)
	}
	if member.ID != "" {
		result.TeamID = member.TeamID
		result.Role = member.Role
	}
	return result, nil
}

// EmailInUse reports whether an active user other than excludeID owns email.
func (s *UserService) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	query := s.db.WithContext(ensureContext(ctx)).
		Model(&models.User{}).
		Where("email = ?", normaliseEmail(email))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("user service: check email: %w", err)
	}
	return count > 0, nil
}

// Create persists a new user. The email is normalised before insert.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user service: user is required")
	}
	user.Email = normaliseEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if err := s.db.WithContext(ensureContext(ctx)).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("user service: create: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password digest.
func (s *UserService) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := s.db.WithContext(ensureContext(ctx)).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("user service: update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateAccount changes the display name and email of the user with id.
func (s *UserService) UpdateAccount(ctx context.Context, id, name, email string) error {
	res := s.db.WithContext(ensureContext(ctx)).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":  strings.TrimSpace(name),
			"email": normaliseEmail(email),
		})
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return ErrEmailTaken
		}
		return fmt.Errorf("user service: update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SoftDelete marks the user deleted and rewrites its email to
// "<email>-<id>-deleted" so the address can be registered again.
func (s *UserService) SoftDelete(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("user service: user is required")
	}
	db := s.db.WithContext(ensureContext(ctx))

	deletedEmail := models.DeletedEmail(user.Email, user.ID)
	if err := db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("email", deletedEmail).Error; err != nil {
		return fmt.Errorf("user service: rewrite email: %w", err)
	}
	if err := db.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		return fmt.Errorf("user service: soft delete: %w", err)
	}
	user.Email = deletedEmail
	return nil
}
