package chat

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

const citationExcerptLimit = 200

// BuildCitations turns retrieval results into a bounded, display-ready
// evidence list. Overlapping chunks from the same moment collapse to one
// citation keyed by (videoId, floor(startTime)).
func BuildCitations(chunks []*domain.TranscriptChunk, videos map[uuid.UUID]*domain.Video, maxCitations int) []Citation {
	if maxCitations <= 0 {
		maxCitations = 4
	}
	ordered := make([]*domain.TranscriptChunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Similarity > ordered[j].Similarity
	})

	seen := make(map[string]struct{})
	citations := make([]Citation, 0, maxCitations)
	for _, c := range ordered {
		bucket := "no-timestamp"
		if c.HasTimestamps() {
			bucket = fmt.Sprintf("%d", int(math.Floor(*c.StartTime)))
		}
		key := c.VideoID.String() + ":" + bucket
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		title := ""
		if v, ok := videos[c.VideoID]; ok {
			title = v.Title
		}
		citation := Citation{
			VideoID:     c.VideoID.String(),
			Title:       title,
			StartTime:   c.StartTime,
			EndTime:     c.EndTime,
			Similarity:  c.Similarity,
			ExcerptText: truncateExcerpt(c.Text),
		}
		if c.HasTimestamps() {
			citation.HasTimestamp = true
			citation.Timestamp = FormatTimestamp(*c.StartTime)
		}
		citations = append(citations, citation)
		if len(citations) == maxCitations {
			break
		}
	}
	return citations
}

// ShowCitations is the display gate. Citations are always computed; whether
// they ship to the client depends on the question wanting sources.
func ShowCitations(qt QuestionType, query string) bool {
	switch qt {
	case QuestionMoment, QuestionGeneral, QuestionConceptual:
		return true
	}
	q := strings.ToLower(query)
	return containsAny(q, "video", "source", "clip", "where", "link", "cite")
}

func truncateExcerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= citationExcerptLimit {
		return text
	}
	cut := text[:citationExcerptLimit]
	if i := strings.LastIndexByte(cut, ' '); i > citationExcerptLimit/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
