package chat

import (
	"strings"
	"testing"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

func history(entries ...string) []domain.ConversationMessage {
	out := make([]domain.ConversationMessage, 0, len(entries))
	for i, content := range entries {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		out = append(out, domain.ConversationMessage{Role: role, Content: content})
	}
	return out
}

func TestExpandNoOpCases(t *testing.T) {
	hist := history(
		"what does he say about dividend investing",
		"He recommends starting with broad index funds before individual dividend stocks.",
	)
	cases := []struct {
		name    string
		query   string
		history []domain.ConversationMessage
		qt      QuestionType
	}{
		{name: "general type", query: "what about that", history: hist, qt: QuestionGeneral},
		{name: "conceptual type", query: "what about that", history: hist, qt: QuestionConceptual},
		{name: "empty history", query: "what about that", history: nil, qt: QuestionFollowUp},
		{
			name:    "long non-referential query",
			query:   "please compare growth investing and value investing approaches for retirement portfolios",
			history: hist,
			qt:      QuestionFollowUp,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expand(tc.query, tc.history, tc.qt, 4); got != tc.query {
				t.Fatalf("Expand changed the query: %q", got)
			}
		})
	}
}

func TestExpandSplicesKeywordsFromPriorExchange(t *testing.T) {
	hist := history(
		"what does he say about dividend investing",
		"He recommends starting with broad index funds before individual dividend stocks.",
	)
	got := Expand("tell me more", hist, QuestionFollowUp, 4)
	if got == "tell me more" {
		t.Fatal("short follow-up was not expanded")
	}
	if !strings.HasPrefix(got, "tell me more ") {
		t.Fatalf("expansion must append, not rewrite: %q", got)
	}
	for _, keyword := range []string{"dividend", "index", "funds"} {
		if !strings.Contains(got, keyword) {
			t.Fatalf("expanded query %q missing keyword %q", got, keyword)
		}
	}
}

func TestExpandSkipsStopwordsAndShortWords(t *testing.T) {
	hist := history(
		"so you said that this was it",
		"Yes and it was all so very big.",
	)
	got := Expand("why", hist, QuestionClarification, 4)
	for _, banned := range []string{"this", "that", "very", "was", "it ", "and"} {
		if strings.Contains(strings.TrimPrefix(got, "why"), " "+strings.TrimSpace(banned)+" ") {
			t.Fatalf("expanded query %q contains filtered word %q", got, banned)
		}
	}
}

func TestExpandCapsKeywordCount(t *testing.T) {
	hist := history(
		"alpha bravo charlie delta echoes foxtrot golfing hotels india juliet kilos limas",
		"november oscars papas quebec romeos sierra tangos uniforms victors whiskeys",
	)
	got := Expand("what about earlier", hist, QuestionFollowUp, 4)
	added := strings.Fields(strings.TrimPrefix(got, "what about earlier"))
	if len(added) > expansionMaxKeywords {
		t.Fatalf("appended %d keywords, cap is %d", len(added), expansionMaxKeywords)
	}
	if len(added) == 0 {
		t.Fatal("expected keywords to be appended")
	}
}
