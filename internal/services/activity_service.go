package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
)

// DefaultActivityLimit bounds ListForUser when no limit is given.
const DefaultActivityLimit = 10

// ActivityEntry describes one audited event.
type ActivityEntry struct {
	TeamID    string
	UserID    string
	Action    models.ActivityType
	IPAddress string
	Metadata  map[string]any
}

// ActivityService appends to and reads the activity log.
type ActivityService struct {
	db *gorm.DB
}

// Log appends entry. Events without a team are dropped silently.
func (s *ActivityService) Log(ctx context.Context, entry ActivityEntry) error {
	if entry.TeamID == "" {
		return nil
	}

	record := &models.ActivityLog{
		TeamID:    entry.TeamID,
		Action:    entry.Action,
		IPAddress: entry.IPAddress,
	}
	if entry.UserID != "" {
		userID := entry.UserID
		record.UserID = &userID
	}
	if len(entry.Metadata) > 0 {
		record.Metadata = datatypes.JSONMap(entry.Metadata)
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(record).Error; err != nil {
		return fmt.Errorf("activity service: log %s: %w", entry.Action, err)
	}
	return nil
}

// ListForUser returns the most recent entries recorded for userID, newest first.
func (s *ActivityService) ListForUser(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	var logs []models.ActivityLog
	err := s.db.WithContext(ensureContext(ctx)).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("activity service: list: %w", err)
	}
	return logs, nil
}

// CleanupOlderThan removes entries older than retentionDays. A non-positive
// retention keeps everything.
func (s *ActivityService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	res := s.db.WithContext(ensureContext(ctx)).
		Where("timestamp < ?", cutoff).
		Delete(&models.ActivityLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("activity service: cleanup: %w", res.Error)
	}
	return res.RowsAffected, nil
}
