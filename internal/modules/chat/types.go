package chat

import (
	"time"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
	"github.com/lumenlabs/creatorchat-backend/internal/guard"
)

// QuestionType tags what kind of answer the caller is after. Derived per
// request, never stored.
type QuestionType string

const (
	QuestionGeneral       QuestionType = "general"
	QuestionConceptual    QuestionType = "conceptual"
	QuestionMoment        QuestionType = "moment"
	QuestionClarification QuestionType = "clarification"
	QuestionFollowUp      QuestionType = "followUp"
)

type ConfidenceLevel string

const (
	ConfidenceHigh       ConfidenceLevel = "high"
	ConfidenceMedium     ConfidenceLevel = "medium"
	ConfidenceLow        ConfidenceLevel = "low"
	ConfidenceNotCovered ConfidenceLevel = "not_covered"
)

// RetrievalProfile is the static search shape owned by one question type.
// Thresholds returns the escalation ladder: preferred first, then the looser
// minimum, except moment questions never loosen.
type RetrievalProfile struct {
	MatchCount         int
	MinThreshold       float64
	PreferredThreshold float64
	RequiresTimestamp  bool
}

func (p RetrievalProfile) Thresholds(qt QuestionType) []float64 {
	if qt == QuestionMoment {
		return []float64{p.PreferredThreshold}
	}
	return []float64{p.PreferredThreshold, p.MinThreshold}
}

type Citation struct {
	VideoID      string   `json:"videoId"`
	Title        string   `json:"title"`
	StartTime    *float64 `json:"startTime"`
	EndTime      *float64 `json:"endTime"`
	Timestamp    string   `json:"timestamp"`
	HasTimestamp bool     `json:"hasTimestamp"`
	Similarity   float64  `json:"similarity"`
	ExcerptText  string   `json:"excerptText"`
}

type CallerIdentity struct {
	UserID         string `json:"userId,omitempty"`
	PublicClientID string `json:"publicClientId,omitempty"`
}

func (c CallerIdentity) IsPublic() bool { return c.UserID == "" }

// Key is the rate-limit and usage identity. Public callers fall back to
// their client id.
func (c CallerIdentity) Key() string {
	if c.UserID != "" {
		return "user:" + c.UserID
	}
	return "public:" + c.PublicClientID
}

type Request struct {
	Query               string                       `json:"query"`
	ChannelScope        string                       `json:"channelScope"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
	CallerIdentity      CallerIdentity               `json:"callerIdentity"`
}

type Evidence struct {
	ChunksUsed       int `json:"chunksUsed"`
	VideosReferenced int `json:"videosReferenced"`

	// Score is the descriptive weighted confidence. It explains the answer;
	// it never gates it.
	Score float64 `json:"score"`
}

type Response struct {
	Answer        string          `json:"answer"`
	Citations     []Citation      `json:"citations"`
	ShowCitations bool            `json:"showCitations"`
	Confidence    ConfidenceLevel `json:"confidence"`
	Evidence      Evidence        `json:"evidence"`
	IsRefusal     bool            `json:"isRefusal"`
}

// Config carries every tunable of the pipeline. Defaults match production;
// the retrieval profiles may be overridden from a tuning file at startup.
type Config struct {
	AuthenticatedLimit guard.LimitProfile
	PublicLimit        guard.LimitProfile

	Profiles map[QuestionType]RetrievalProfile

	// Public callers get clamped to stricter retrieval limits.
	PublicMaxMatchCount int
	PublicMinThresholds map[QuestionType]float64

	// Floors for the authoritative answer/refuse gate.
	MinSimilarityForAnyAnswer       float64
	MinSimilarityForConfidentAnswer float64

	// Cutoffs for the auxiliary weighted score label.
	WeightedHighCutoff   float64
	WeightedMediumCutoff float64

	MaxCitations   int
	HistoryWindow  int
	ExpansionDepth int
}

func DefaultConfig() Config {
	return Config{
		AuthenticatedLimit: guard.LimitProfile{Limit: 30, Window: time.Minute},
		PublicLimit:        guard.LimitProfile{Limit: 10, Window: 10 * time.Minute},
		Profiles: map[QuestionType]RetrievalProfile{
			QuestionMoment:        {MatchCount: 5, MinThreshold: 0.40, PreferredThreshold: 0.40, RequiresTimestamp: true},
			QuestionGeneral:       {MatchCount: 12, MinThreshold: 0.25, PreferredThreshold: 0.35},
			QuestionConceptual:    {MatchCount: 10, MinThreshold: 0.28, PreferredThreshold: 0.38},
			QuestionFollowUp:      {MatchCount: 8, MinThreshold: 0.28, PreferredThreshold: 0.35},
			QuestionClarification: {MatchCount: 8, MinThreshold: 0.25, PreferredThreshold: 0.32},
		},
		PublicMaxMatchCount: 6,
		PublicMinThresholds: map[QuestionType]float64{
			QuestionGeneral:  0.35,
			QuestionFollowUp: 0.35,
		},
		MinSimilarityForAnyAnswer:       0.30,
		MinSimilarityForConfidentAnswer: 0.45,
		WeightedHighCutoff:              0.62,
		WeightedMediumCutoff:            0.45,
		MaxCitations:                    4,
		HistoryWindow:                   12,
		ExpansionDepth:                  4,
	}
}
