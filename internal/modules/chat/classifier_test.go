package chat

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		hasHistory bool
		want       QuestionType
	}{
		{
			name:  "moment where did",
			query: "Where did she talk about pricing?",
			want:  QuestionMoment,
		},
		{
			name:  "moment which video",
			query: "Which video covers the launch story",
			want:  QuestionMoment,
		},
		{
			name:  "moment wins over general patterns",
			query: "where does he give an overview of investing",
			want:  QuestionMoment,
		},
		{
			name:       "clarification with history",
			query:      "what did you mean by compounding",
			hasHistory: true,
			want:       QuestionClarification,
		},
		{
			name:  "clarification without history demotes to conceptual",
			query: "what did you mean by compounding",
			want:  QuestionConceptual,
		},
		{
			name:       "follow up connective opener",
			query:      "and what about index funds",
			hasHistory: true,
			want:       QuestionFollowUp,
		},
		{
			name:       "follow up continuation request",
			query:      "tell me more please, this is interesting to me today",
			hasHistory: true,
			want:       QuestionFollowUp,
		},
		{
			name:       "follow up short query with history",
			query:      "more dividend examples",
			hasHistory: true,
			want:       QuestionFollowUp,
		},
		{
			name:  "short query without history is not a follow up",
			query: "more dividend examples",
			want:  QuestionGeneral,
		},
		{
			name:  "general topic overview",
			query: "what topics are on the channel",
			want:  QuestionGeneral,
		},
		{
			name:  "conceptual how",
			query: "how should a beginner pick a broker",
			want:  QuestionConceptual,
		},
		{
			name:  "fallback short unmatched is general",
			query: "dividend stocks vs bonds",
			want:  QuestionGeneral,
		},
		{
			name:  "fallback eight unmatched words is general",
			query: "best dividend stocks bonds reits crypto gold silver",
			want:  QuestionGeneral,
		},
		{
			name:  "fallback nine unmatched words is conceptual",
			query: "best dividend stocks bonds reits crypto gold silver platinum",
			want:  QuestionConceptual,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.query, tc.hasHistory)
			if got != tc.want {
				t.Fatalf("Classify(%q, %v) = %q, want %q", tc.query, tc.hasHistory, got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := Classify("Where did she talk about pricing?", false); got != QuestionMoment {
			t.Fatalf("run %d: got %q", i, got)
		}
	}
}
