package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/teamkit/internal/models"
)

// DatabaseCounter keeps counters in the rate_counters table. It lets several
// instances share limits without Redis.
type DatabaseCounter struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseCounter constructs a database-backed Counter.
func NewDatabaseCounter(db *gorm.DB) (*DatabaseCounter, error) {
	if db == nil {
		return nil, errors.New("cache: db is required")
	}
	return &DatabaseCounter{db: db, now: time.Now}, nil
}

// IncrementWithTTL bumps key inside a row-locked transaction.
func (c *DatabaseCounter) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = DefaultWindow
	}

	now := c.now()
	var entry models.RateCounter

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.RateCounter{Key: key, Count: 1, ExpiresAt: now.Add(window)}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if !now.Before(entry.ExpiresAt) {
			entry.Count = 1
			entry.ExpiresAt = now.Add(window)
		} else {
			entry.Count++
		}
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return entry.Count, entry.ExpiresAt.Sub(now), nil
}

// PurgeExpired deletes counters whose window has elapsed.
func (c *DatabaseCounter) PurgeExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := c.db.WithContext(ctx).Where("expires_at < ?", c.now()).Delete(&models.RateCounter{})
	return res.RowsAffected, res.Error
}
