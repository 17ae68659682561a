package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
)

// InvitationService stores team invitations. Status moves from pending to
// accepted exactly once.
type InvitationService struct {
	db *gorm.DB
}

// Create persists a pending invitation.
func (s *InvitationService) Create(ctx context.Context, teamID, email string, role models.Role, invitedBy string) (*models.Invitation, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invitation service: invalid role %q", role)
	}

	inv := &models.Invitation{
		TeamID:    teamID,
		Email:     normaliseEmail(email),
		Role:      role,
		InvitedBy: invitedBy,
		Status:    models.InvitationPending,
	}
	if err := s.db.WithContext(ensureContext(ctx)).Create(inv).Error; err != nil {
		return nil, fmt.Errorf("invitation service: create: %w", err)
	}
	return inv, nil
}

// HasPending reports whether email already holds a pending invitation to teamID.
func (s *InvitationService) HasPending(ctx context.Context, teamID, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ensureContext(ctx)).
		Model(&models.Invitation{}).
		Where("team_id = ? AND email = ? AND status = ?", teamID, normaliseEmail(email), models.InvitationPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("invitation service: check pending: %w", err)
	}
	return count > 0, nil
}

// FindPending returns the pending invitation with id addressed to email.
func (s *InvitationService) FindPending(ctx context.Context, id, email string) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.db.WithContext(ensureContext(ctx)).
		Where("id = ? AND email = ? AND status = ?", id, normaliseEmail(email), models.InvitationPending).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("invitation service: find pending: %w", err)
	}
	return &inv, nil
}

// Accept flips a pending invitation to accepted. A concurrent acceptance of the
// same invitation loses with ErrInvitationStale.
func (s *InvitationService) Accept(ctx context.Context, id string) error {
	res := s.db.WithContext(ensureContext(ctx)).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Update("status", models.InvitationAccepted)
	if res.Error != nil {
		return fmt.Errorf("invitation service: accept: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return ErrInvitationStale
	}
	return nil
}

// ListPending returns the pending invitations of teamID, newest first.
func (s *InvitationService) ListPending(ctx context.Context, teamID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.WithContext(ensureContext(ctx)).
		Where("team_id = ? AND status = ?", teamID, models.InvitationPending).
		Order("invited_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: list pending: %w", err)
	}
	return invitations, nil
}
