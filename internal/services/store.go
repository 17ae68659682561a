package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
)

// Store groups the statement-level services over one database handle. A Store
// built inside Transaction routes every statement through the same transaction.
type Store struct {
	db *gorm.DB

	Users       *UserService
	Teams       *TeamService
	Invitations *InvitationService
	Activity    *ActivityService
}

// Stats is a point-in-time count of the main tables.
type Stats struct {
	ActiveUsers        int64
	Teams              int64
	PendingInvitations int64
}

// NewStore constructs a Store over db.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	return newStore(db), nil
}

func newStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       &UserService{db: db},
		Teams:       &TeamService{db: db},
		Invitations: &InvitationService{db: db},
		Activity:    &ActivityService{db: db},
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
// Any error returned by fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		return fn(newStore(tx))
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ensureContext(ctx))
}

// Stats counts active users, teams and pending invitations.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ensureContext(ctx))

	var stats Stats
	if err := db.Model(&models.User{}).Count(&stats.ActiveUsers).Error; err != nil {
		return Stats{}, fmt.Errorf("store: count users: %w", err)
	}
	if err := db.Model(&models.Team{}).Count(&stats.Teams).Error; err != nil {
		return Stats{}, fmt.Errorf("store: count teams: %w", err)
	}
	if err := db.Model(&models.Invitation{}).
		Where("status = ?", models.InvitationPending).
		Count(&stats.PendingInvitations).Error; err != nil {
		return Stats{}, fmt.Errorf("store: count invitations: %w", err)
	}
	return stats, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
