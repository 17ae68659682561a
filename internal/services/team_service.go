package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
)

// TeamService manages teams and their memberships.
type TeamService struct {
	db *gorm.DB
}

// Create inserts a team with the given name.
func (s *TeamService) Create(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("team service: name is required")
	}

	team := &models.Team{Name: name}
	if err := s.db.WithContext(ensureContext(ctx)).Create(team).Error; err != nil {
		return nil, fmt.Errorf("team service: create: %w", err)
	}
	return team, nil
}

// GetByID returns the team with id without members.
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := s.db.WithContext(ensureContext(ctx)).First(&team, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("team service: get: %w", err)
	}
	return &team, nil
}

// AddMember links userID to teamID with role.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string, role models.Role) (*models.TeamMember, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("team service: invalid role %q", role)
	}

	member := &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	if err := s.db.WithContext(ensureContext(ctx)).Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("team service: add member: %w", err)
	}
	return member, nil
}

// RemoveMember deletes the membership memberID scoped to teamID. It reports
// whether a row was removed; a member of another team is never touched.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, memberID string) (bool, error) {
	res := s.db.WithContext(ensureContext(ctx)).
		Where("id = ? AND team_id = ?", memberID, teamID).
		Delete(&models.TeamMember{})
	if res.Error != nil {
		return false, fmt.Errorf("team service: remove member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RemoveUserMemberships deletes the memberships userID holds in teamID.
func (s *TeamService) RemoveUserMemberships(ctx context.Context, userID, teamID string) error {
	err := s.db.WithContext(ensureContext(ctx)).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Delete(&models.TeamMember{}).Error
	if err != nil {
		return fmt.Errorf("team service: remove memberships: %w", err)
	}
	return nil
}

// GetForUser returns the team userID belongs to with its members and their
// public user fields. Members whose account was soft deleted are omitted.
func (s *TeamService) GetForUser(ctx context.Context, userID string) (*models.Team, error) {
	db := s.db.WithContext(ensureContext(ctx))

	var member models.TeamMember
	err := db.Where("user_id = ?", userID).Order("joined_at ASC").First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("team service: load membership: %w", err)
	}

	var team models.Team
	err = db.
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("joined_at ASC")
		}).
		Preload("Members.User").
		First(&team, "id = ?", member.TeamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("team service: load team: %w", err)
	}

	members := team.Members[:0]
	for _, m := range team.Members {
		if m.User != nil {
			members = append(members, m)
		}
	}
	team.Members = members
	return &team, nil
}

// IsMemberByEmail reports whether an active user with email belongs to teamID.
func (s *TeamService) IsMemberByEmail(ctx context.Context, teamID, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ensureContext(ctx)).
		Model(&models.TeamMember{}).
		Joins("JOIN users ON users.id = team_members.user_id AND users.deleted_at IS NULL").
		Where("team_members.team_id = ? AND users.email = ?", teamID, normaliseEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("team service: check membership: %w", err)
	}
	return count > 0, nil
}
