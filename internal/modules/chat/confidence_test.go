package chat

import (
	"testing"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

func chunkWithSimilarity(similarity float64, withTimestamps bool) *domain.TranscriptChunk {
	c := &domain.TranscriptChunk{
		ID:         uuid.New(),
		VideoID:    uuid.New(),
		ChannelID:  uuid.New(),
		Text:       "some transcript text",
		Similarity: similarity,
	}
	if withTimestamps {
		start, end := 120.0, 150.0
		c.StartTime, c.EndTime = &start, &end
	}
	return c
}

func TestAssessGate(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name       string
		chunks     []*domain.TranscriptChunk
		qt         QuestionType
		wantLevel  ConfidenceLevel
		wantAnswer bool
	}{
		{
			name:       "no chunks refuses",
			chunks:     nil,
			qt:         QuestionGeneral,
			wantLevel:  ConfidenceNotCovered,
			wantAnswer: false,
		},
		{
			name:       "below any-answer floor refuses",
			chunks:     []*domain.TranscriptChunk{chunkWithSimilarity(0.2, true)},
			qt:         QuestionGeneral,
			wantLevel:  ConfidenceNotCovered,
			wantAnswer: false,
		},
		{
			name:       "between floors answers medium",
			chunks:     []*domain.TranscriptChunk{chunkWithSimilarity(0.35, true)},
			qt:         QuestionGeneral,
			wantLevel:  ConfidenceMedium,
			wantAnswer: true,
		},
		{
			name:       "at confident floor answers high",
			chunks:     []*domain.TranscriptChunk{chunkWithSimilarity(0.5, true)},
			qt:         QuestionMoment,
			wantLevel:  ConfidenceHigh,
			wantAnswer: true,
		},
		{
			name: "moment without timestamps refuses regardless of similarity",
			chunks: []*domain.TranscriptChunk{
				chunkWithSimilarity(0.95, false),
				chunkWithSimilarity(0.90, false),
			},
			qt:         QuestionMoment,
			wantLevel:  ConfidenceNotCovered,
			wantAnswer: false,
		},
		{
			name: "non-moment without timestamps still answers",
			chunks: []*domain.TranscriptChunk{
				chunkWithSimilarity(0.95, false),
			},
			qt:         QuestionConceptual,
			wantLevel:  ConfidenceHigh,
			wantAnswer: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Assess(tc.chunks, tc.qt, "where did she talk about pricing", cfg)
			if got.Level != tc.wantLevel {
				t.Fatalf("level = %q, want %q", got.Level, tc.wantLevel)
			}
			if got.ShouldAnswer != tc.wantAnswer {
				t.Fatalf("shouldAnswer = %v, want %v", got.ShouldAnswer, tc.wantAnswer)
			}
			if got.ShouldAnswer == (got.Level == ConfidenceNotCovered) {
				t.Fatalf("shouldAnswer %v inconsistent with level %q", got.ShouldAnswer, got.Level)
			}
		})
	}
}

// The gate must never drop a confidence level as max similarity rises.
func TestAssessGateIsMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	rank := map[ConfidenceLevel]int{
		ConfidenceNotCovered: 0,
		ConfidenceMedium:     1,
		ConfidenceHigh:       2,
	}
	prev := -1
	for sim := 0.0; sim <= 1.0; sim += 0.01 {
		got := Assess([]*domain.TranscriptChunk{chunkWithSimilarity(sim, true)}, QuestionConceptual, "how does compounding work", cfg)
		r, ok := rank[got.Level]
		if !ok {
			t.Fatalf("unexpected level %q at similarity %.2f", got.Level, sim)
		}
		if r < prev {
			t.Fatalf("confidence dropped from rank %d to %d at similarity %.2f", prev, r, sim)
		}
		prev = r
	}
}

// The timestamp requirement is profile configuration, not a hardcoded
// question type: enabling it on another type forces the same refusal.
func TestAssessTimestampRequirementFollowsProfile(t *testing.T) {
	untimed := []*domain.TranscriptChunk{chunkWithSimilarity(0.9, false)}

	cfg := DefaultConfig()
	if got := Assess(untimed, QuestionConceptual, "how does pricing work", cfg); !got.ShouldAnswer {
		t.Fatal("conceptual answers untimed evidence by default")
	}

	p := cfg.Profiles[QuestionConceptual]
	p.RequiresTimestamp = true
	cfg.Profiles[QuestionConceptual] = p
	got := Assess(untimed, QuestionConceptual, "how does pricing work", cfg)
	if got.ShouldAnswer || got.Level != ConfidenceNotCovered {
		t.Fatalf("profile requiring timestamps should refuse untimed chunks, got (%v, %q)", got.ShouldAnswer, got.Level)
	}
}

func TestWeightedScoreStaysAuxiliary(t *testing.T) {
	cfg := DefaultConfig()
	chunks := []*domain.TranscriptChunk{chunkWithSimilarity(0.32, true)}
	got := Assess(chunks, QuestionMoment, "where did she talk about pricing", cfg)
	// The moment modifier alone pushes the weighted score up; the gate must
	// still come from the floor comparison.
	if got.Level != ConfidenceMedium {
		t.Fatalf("level = %q, want medium from the floor gate", got.Level)
	}
	if got.WeightedScore <= 0 || got.WeightedScore > 1 {
		t.Fatalf("weighted score out of range: %f", got.WeightedScore)
	}
}
