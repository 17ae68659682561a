package models

import "time"

// RateCounter is a fixed-window request counter shared through the database.
type RateCounter struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
