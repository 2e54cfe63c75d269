package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptChunk is a contiguous, embeddable slice of a video transcript.
// Chunks are written once by ingestion and read-only afterwards. Similarity
// is populated only on query results and never stored.
type TranscriptChunk struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID    uuid.UUID      `gorm:"type:uuid;index" json:"videoId"`
	ChannelID  uuid.UUID      `gorm:"type:uuid;index" json:"channelId"`
	ChunkIndex int            `gorm:"index" json:"chunkIndex"`
	Text       string         `gorm:"type:text" json:"text"`
	StartTime  *float64       `json:"startTime"`
	EndTime    *float64       `json:"endTime"`
	Embedding  datatypes.JSON `json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`

	Similarity float64 `gorm:"-" json:"similarity,omitempty"`
}

func (TranscriptChunk) TableName() string { return "transcript_chunk" }

// HasTimestamps reports whether the chunk carries valid timing data:
// endTime > startTime >= 0. Transcripts extracted without timing data store
// nil on both sides.
func (c *TranscriptChunk) HasTimestamps() bool {
	if c == nil || c.StartTime == nil || c.EndTime == nil {
		return false
	}
	return *c.StartTime >= 0 && *c.EndTime > *c.StartTime
}
