package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeVideo = "video"
	ContentTypeShort = "short"
	ContentTypeLive  = "live"
)

const (
	TranscriptStatusPending  = "pending"
	TranscriptStatusIngested = "ingested"
	TranscriptStatusMissing  = "missing"
)

type Video struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID        uuid.UUID `gorm:"type:uuid;index" json:"channelId"`
	PlatformID       string    `gorm:"size:64;uniqueIndex" json:"platformId"`
	Title            string    `gorm:"size:512" json:"title"`
	ContentType      string    `gorm:"size:16;index" json:"contentType"`
	PublishedAt      time.Time `json:"publishedAt"`
	DurationSeconds  int       `json:"durationSeconds"`
	TranscriptStatus string    `gorm:"size:16" json:"transcriptStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Video) TableName() string { return "video" }
