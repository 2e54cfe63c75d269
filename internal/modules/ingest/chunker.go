package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/clients/transcripts"
	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

const chunkTargetChars = 900

// buildChunks merges caption segments into embeddable chunks around the
// target size. A chunk carries timestamps only when both its first and last
// segment do; mixed-timing chunks would lie about their span.
func buildChunks(videoID, channelID uuid.UUID, segments []transcripts.Segment) []*domain.TranscriptChunk {
	var chunks []*domain.TranscriptChunk
	var (
		texts []string
		size  int
		first *transcripts.Segment
		last  *transcripts.Segment
	)

	flush := func() {
		if len(texts) == 0 {
			return
		}
		chunk := &domain.TranscriptChunk{
			ID:         uuid.New(),
			VideoID:    videoID,
			ChannelID:  channelID,
			ChunkIndex: len(chunks),
			Text:       strings.Join(texts, " "),
		}
		if first != nil && last != nil && first.Start != nil && last.End != nil &&
			*first.Start >= 0 && *last.End > *first.Start {
			start, end := *first.Start, *last.End
			chunk.StartTime, chunk.EndTime = &start, &end
		}
		chunks = append(chunks, chunk)
		texts, size, first, last = nil, 0, nil, nil
	}

	for i := range segments {
		seg := segments[i]
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if size+len(text) > chunkTargetChars && size > 0 {
			flush()
		}
		if first == nil {
			first = &segments[i]
		}
		last = &segments[i]
		texts = append(texts, text)
		size += len(text) + 1
	}
	flush()
	return chunks
}
