package youtube

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

// ImportMode controls which slice of a channel's uploads gets pulled.
const (
	ModeLatest = "latest"
	ModeOldest = "oldest"
	ModeAll    = "all"
)

type ChannelInfo struct {
	PlatformID string
	Title      string
	Handle     string
	URL        string
}

type VideoInfo struct {
	PlatformID      string
	Title           string
	PublishedAt     time.Time
	DurationSeconds int
	IsShort         bool
	IsLive          bool
}

// Client is the video-platform metadata boundary. Transcript extraction is a
// separate collaborator; this client only resolves channels and lists
// uploads.
type Client interface {
	ResolveChannel(ctx context.Context, channelRef string) (*ChannelInfo, error)
	ListUploads(ctx context.Context, channelPlatformID, mode string, limit int) ([]VideoInfo, error)
}

type client struct {
	log *logger.Logger
	svc *yt.Service
}

func NewClient(ctx context.Context, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing YOUTUBE_API_KEY")
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube service init failed: %w", err)
	}
	return &client{log: log.With("service", "YouTubeClient"), svc: svc}, nil
}

// ResolveChannel accepts a channel URL, an @handle, or a raw channel id.
func (c *client) ResolveChannel(ctx context.Context, channelRef string) (*ChannelInfo, error) {
	ref := strings.TrimSpace(channelRef)
	if ref == "" {
		return nil, fmt.Errorf("channel reference required")
	}

	call := c.svc.Channels.List([]string{"snippet"}).Context(ctx)
	switch {
	case strings.Contains(ref, "/channel/"):
		id := ref[strings.Index(ref, "/channel/")+len("/channel/"):]
		call = call.Id(strings.Trim(id, "/"))
	case strings.Contains(ref, "/@"):
		handle := ref[strings.Index(ref, "/@")+2:]
		call = call.ForHandle(strings.Trim(handle, "/"))
	case strings.HasPrefix(ref, "@"):
		call = call.ForHandle(strings.TrimPrefix(ref, "@"))
	default:
		call = call.Id(ref)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("channel lookup failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %q not found", ref)
	}
	ch := resp.Items[0]
	return &ChannelInfo{
		PlatformID: ch.Id,
		Title:      ch.Snippet.Title,
		Handle:     ch.Snippet.CustomUrl,
		URL:        "https://www.youtube.com/channel/" + ch.Id,
	}, nil
}

func (c *client) ListUploads(ctx context.Context, channelPlatformID, mode string, limit int) ([]VideoInfo, error) {
	chResp, err := c.svc.Channels.List([]string{"contentDetails"}).
		Id(channelPlatformID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("channel contentDetails lookup failed: %w", err)
	}
	if len(chResp.Items) == 0 {
		return nil, fmt.Errorf("channel %q not found", channelPlatformID)
	}
	uploadsPlaylist := chResp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploadsPlaylist == "" {
		return nil, fmt.Errorf("channel %q has no uploads playlist", channelPlatformID)
	}

	// The uploads playlist comes back newest-first, so latest-mode can stop
	// at the limit; oldest-mode has to walk the whole playlist first.
	var videoIDs []string
	pageToken := ""
	for {
		items, nextToken, err := c.listPlaylistPage(ctx, uploadsPlaylist, pageToken)
		if err != nil {
			return nil, err
		}
		videoIDs = append(videoIDs, items...)
		if mode == ModeLatest && limit > 0 && len(videoIDs) >= limit {
			videoIDs = videoIDs[:limit]
			break
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}
	if mode == ModeOldest {
		reverse(videoIDs)
		if limit > 0 && len(videoIDs) > limit {
			videoIDs = videoIDs[:limit]
		}
	}

	return c.describeVideos(ctx, videoIDs)
}

func (c *client) listPlaylistPage(ctx context.Context, playlistID, pageToken string) ([]string, string, error) {
	call := c.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(50).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("playlist page fetch failed: %w", err)
	}
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	return ids, resp.NextPageToken, nil
}

func (c *client) describeVideos(ctx context.Context, videoIDs []string) ([]VideoInfo, error) {
	out := make([]VideoInfo, 0, len(videoIDs))
	for start := 0; start < len(videoIDs); start += 50 {
		end := start + 50
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "liveStreamingDetails"}).
			Id(videoIDs[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("video details fetch failed: %w", err)
		}
		for _, v := range resp.Items {
			published, _ := time.Parse(time.RFC3339, v.Snippet.PublishedAt)
			duration := parseISODuration(v.ContentDetails.Duration)
			out = append(out, VideoInfo{
				PlatformID:      v.Id,
				Title:           v.Snippet.Title,
				PublishedAt:     published,
				DurationSeconds: duration,
				IsShort:         duration > 0 && duration <= 62 && v.LiveStreamingDetails == nil,
				IsLive:          v.LiveStreamingDetails != nil,
			})
		}
	}
	return out, nil
}

// parseISODuration handles the PT#H#M#S form the API uses. Unparseable input
// yields zero rather than an error; duration is advisory metadata.
func parseISODuration(s string) int {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "P"), "T")
	total, number := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			number = number*10 + int(r-'0')
		case r == 'H':
			total += number * 3600
			number = 0
		case r == 'M':
			total += number * 60
			number = 0
		case r == 'S':
			total += number
			number = 0
		default:
			number = 0
		}
	}
	return total
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
