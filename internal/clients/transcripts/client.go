package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lumenlabs/creatorchat-backend/internal/platform/envutil"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/httpx"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

// ErrUnavailable means the video has no transcript to fetch. Ingestion marks
// the video missing and moves on; this is not a transport failure.
var ErrUnavailable = errors.New("transcript unavailable")

// Segment is one extracted caption span. Start and End are nil when the
// extractor could not recover timing data.
type Segment struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Source is the transcript-extraction boundary. Extraction itself runs in a
// separate service; this client only fetches its output.
type Source interface {
	Fetch(ctx context.Context, videoPlatformID string) ([]Segment, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	authToken  string
	httpClient *http.Client
	maxRetries int
}

func NewSource(log *logger.Logger) (Source, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("TRANSCRIPT_SERVICE_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing TRANSCRIPT_SERVICE_URL")
	}
	timeoutSec := envutil.Int("TRANSCRIPT_SERVICE_TIMEOUT_SECONDS", 120)
	return &client{
		log:        log.With("service", "TranscriptSource"),
		baseURL:    baseURL,
		authToken:  strings.TrimSpace(os.Getenv("TRANSCRIPT_SERVICE_TOKEN")),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: envutil.Int("TRANSCRIPT_SERVICE_MAX_RETRIES", 2),
	}, nil
}

func (c *client) Fetch(ctx context.Context, videoPlatformID string) ([]Segment, error) {
	endpoint := c.baseURL + "/transcripts/" + url.PathEscape(videoPlatformID)

	backoff := 2 * time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		segments, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return segments, nil
		}
		if errors.Is(err, ErrUnavailable) || !httpx.IsRetryableError(err) {
			return nil, err
		}
		lastErr = err
		if attempt < c.maxRetries {
			sleepFor := httpx.JitterSleep(backoff)
			c.log.Warn("Transcript fetch failed, retrying",
				"video_id", videoPlatformID,
				"attempt", attempt+1,
				"sleep", sleepFor.String(),
				"error", err,
			)
			time.Sleep(sleepFor)
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("transcript fetch exhausted retries: %w", lastErr)
}

func (c *client) fetchOnce(ctx context.Context, endpoint string) ([]Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUnavailable
	case resp.StatusCode >= 400:
		if httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, &httpx.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return nil, fmt.Errorf("transcript service returned %d: %s", resp.StatusCode, truncate(body))
	}

	var payload struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("transcript payload decode failed: %w", err)
	}
	if len(payload.Segments) == 0 {
		return nil, ErrUnavailable
	}
	return payload.Segments, nil
}

func truncate(b []byte) string {
	const max = 300
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
