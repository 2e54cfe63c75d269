package ingest

// ImportSettings selects which slice of the channel's uploads to pull.
// Limit is ignored for mode "all".
type ImportSettings struct {
	Mode  string `json:"mode"`
	Limit *int   `json:"limit"`
}

type ContentTypeFilters struct {
	Videos bool `json:"videos"`
	Shorts bool `json:"shorts"`
	Lives  bool `json:"lives"`
}

type Request struct {
	ChannelURL         string             `json:"channelUrl"`
	ExistingChannelID  string             `json:"existingChannelId"`
	ImportSettings     ImportSettings     `json:"importSettings"`
	ContentTypeFilters ContentTypeFilters `json:"contentTypeFilters"`

	// IdempotencyKey comes from the request header, not the body.
	IdempotencyKey string `json:"-"`
	OwnerKey       string `json:"-"`
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Response struct {
	ChannelID          string `json:"channelId"`
	ChannelTitle       string `json:"channelTitle"`
	Status             string `json:"status"`
	VideosImported     int    `json:"videosImported"`
	VideosSkipped      int    `json:"videosSkipped"`
	ChunksIngested     int    `json:"chunksIngested"`
	TranscriptsMissing int    `json:"transcriptsMissing"`
	Error              string `json:"error,omitempty"`

	// Replayed marks a response served from the idempotency store instead
	// of a fresh execution.
	Replayed bool `json:"replayed,omitempty"`
}
