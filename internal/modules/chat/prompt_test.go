package chat

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{75, "1:15"},
		{599.9, "9:59"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{7322, "2:02:02"},
		{-3, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestBuildPromptSectionOrder(t *testing.T) {
	videoID := uuid.New()
	start, end := 120.0, 150.0
	chunks := []*domain.TranscriptChunk{
		{ID: uuid.New(), VideoID: videoID, Text: "We priced the course at ninety dollars.", StartTime: &start, EndTime: &end, Similarity: 0.8},
	}
	videos := map[uuid.UUID]*domain.Video{videoID: {ID: videoID, Title: "Launch retrospective"}}
	hist := []domain.ConversationMessage{
		{Role: domain.RoleUser, Content: "what happened at launch"},
		{Role: domain.RoleAssistant, Content: "The launch sold out in a day."},
	}

	prompt := BuildPrompt("Where did she talk about pricing?", chunks, hist, QuestionMoment, CreatorIdentity{Name: "Maya"}, ConfidenceHigh, videos)

	markers := []string{
		"Maya",
		"ONLY from the transcript excerpts",
		"timestamp reference",
		"TRANSCRIPT EXCERPTS:",
		"\"Launch retrospective\" at 2:00-2:30",
		"RECENT CONVERSATION:",
		"QUESTION: Where did she talk about pricing?",
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("prompt missing %q:\n%s", marker, prompt)
		}
		if idx < last {
			t.Fatalf("prompt section %q out of order", marker)
		}
		last = idx
	}
}

func TestBuildPromptMarksMissingTimestamps(t *testing.T) {
	videoID := uuid.New()
	chunks := []*domain.TranscriptChunk{
		{ID: uuid.New(), VideoID: videoID, Text: "untimed excerpt", Similarity: 0.8},
	}
	prompt := BuildPrompt("how does pricing work", chunks, nil, QuestionConceptual, CreatorIdentity{}, ConfidenceMedium, map[uuid.UUID]*domain.Video{})
	if !strings.Contains(prompt, "no timestamp available") {
		t.Fatalf("prompt should mark absent timestamps:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Unknown video") {
		t.Fatalf("prompt should label unknown videos:\n%s", prompt)
	}
}

func TestBuildPromptBoundsHistory(t *testing.T) {
	var hist []domain.ConversationMessage
	for i := 0; i < 10; i++ {
		hist = append(hist, domain.ConversationMessage{
			Role:    domain.RoleUser,
			Content: string(rune('a' + i)),
		})
	}
	prompt := BuildPrompt("how does pricing work", nil, hist, QuestionGeneral, CreatorIdentity{}, ConfidenceHigh, nil)
	if strings.Contains(prompt, "User: a\n") {
		t.Fatal("oldest history entry should be trimmed from the prompt")
	}
	if !strings.Contains(prompt, "User: j\n") {
		t.Fatal("newest history entry missing from the prompt")
	}
}

func TestBuildPromptHedgesOnMediumConfidence(t *testing.T) {
	prompt := BuildPrompt("how does pricing work", nil, nil, QuestionConceptual, CreatorIdentity{}, ConfidenceMedium, nil)
	if !strings.Contains(prompt, "Hedge") {
		t.Fatalf("medium confidence should add a hedging directive:\n%s", prompt)
	}
}
