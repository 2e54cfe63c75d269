package chat

import "github.com/lumenlabs/creatorchat-backend/internal/domain"

// Assessment is the gate's verdict for one retrieval result set. The
// max-similarity floor gate is authoritative for both the answer/refuse
// decision and the displayed confidence label; WeightedScore is auxiliary
// explanation only and never changes the decision.
type Assessment struct {
	Level         ConfidenceLevel
	ShouldAnswer  bool
	MaxSimilarity float64
	AvgSimilarity float64
	WeightedScore float64
	WeightedLabel ConfidenceLevel
}

var questionTypeModifiers = map[QuestionType]float64{
	QuestionMoment:        0.9,
	QuestionConceptual:    0.8,
	QuestionGeneral:       0.7,
	QuestionFollowUp:      0.6,
	QuestionClarification: 0.5,
}

// Assess gates the answer on retrieval quality. Refusal is forced, whatever
// the similarity, when the question type's profile demands timestamped
// evidence and no returned chunk carries any: pointing at a moment without a
// timestamp is not an acceptable answer.
func Assess(chunks []*domain.TranscriptChunk, qt QuestionType, query string, cfg Config) Assessment {
	out := Assessment{Level: ConfidenceNotCovered}
	if len(chunks) == 0 {
		return out
	}

	var sum float64
	for _, c := range chunks {
		sum += c.Similarity
		if c.Similarity > out.MaxSimilarity {
			out.MaxSimilarity = c.Similarity
		}
	}
	out.AvgSimilarity = sum / float64(len(chunks))
	out.WeightedScore = weightedScore(chunks, qt, query, out.AvgSimilarity, out.MaxSimilarity)
	out.WeightedLabel = weightedLabel(out.WeightedScore, cfg)

	if cfg.Profiles[qt].RequiresTimestamp && !anyChunkHasTimestamps(chunks) {
		return out
	}
	if out.MaxSimilarity < cfg.MinSimilarityForAnyAnswer {
		return out
	}

	out.ShouldAnswer = true
	if out.MaxSimilarity >= cfg.MinSimilarityForConfidentAnswer {
		out.Level = ConfidenceHigh
	} else {
		out.Level = ConfidenceMedium
	}
	return out
}

// weightedScore is the descriptive confidence formula. Each bonus term is
// capped at its weight so the total stays in [0, 1].
func weightedScore(chunks []*domain.TranscriptChunk, qt QuestionType, query string, avg, top float64) float64 {
	chunkBonus := float64(len(chunks)) / 10 * 0.1
	if chunkBonus > 0.1 {
		chunkBonus = 0.1
	}
	specificityBonus := float64(wordCount(query)) / 12 * 0.1
	if specificityBonus > 0.1 {
		specificityBonus = 0.1
	}
	return 0.4*avg + 0.2*top + 0.2*questionTypeModifiers[qt] + chunkBonus + specificityBonus
}

func weightedLabel(score float64, cfg Config) ConfidenceLevel {
	switch {
	case score >= cfg.WeightedHighCutoff:
		return ConfidenceHigh
	case score >= cfg.WeightedMediumCutoff:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func anyChunkHasTimestamps(chunks []*domain.TranscriptChunk) bool {
	for _, c := range chunks {
		if c.HasTimestamps() {
			return true
		}
	}
	return false
}
