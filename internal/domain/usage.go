package domain

import "time"

// UsageCounter tracks daily message usage per owner key (user id or public
// client id). Both answers and refusals consume a message; cancelled requests
// never do.
type UsageCounter struct {
	OwnerKey  string    `gorm:"size:128;primaryKey" json:"ownerKey"`
	Day       string    `gorm:"size:10;primaryKey" json:"day"`
	Messages  int64     `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UsageCounter) TableName() string { return "usage_counter" }
