package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a linked creator channel. PlatformID is the video platform's
// channel id and is the unit of ingestion locking.
type Channel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlatformID string    `gorm:"size:64;uniqueIndex" json:"platformId"`
	Title      string    `gorm:"size:256" json:"title"`
	Handle     string    `gorm:"size:128" json:"handle"`
	URL        string    `gorm:"size:512" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Channel) TableName() string { return "channel" }
