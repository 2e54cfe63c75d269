package chat

import "strings"

// Classification is a fixed-priority rule table. The order is load-bearing:
// moment detection must win over general patterns so "where does he give an
// overview of X" reads as a moment request, not a summary request.
type classifierRule struct {
	name  string
	apply func(query string, words int, hasHistory bool) (QuestionType, bool)
}

var classifierRules = []classifierRule{
	{name: "moment", apply: func(q string, _ int, _ bool) (QuestionType, bool) {
		if containsAny(q,
			"where did", "where does", "where do",
			"when did", "when does", "when do",
			"which video", "what video", "in which episode",
			"timestamp", "find the moment", "at what point",
		) {
			return QuestionMoment, true
		}
		return "", false
	}},
	{name: "clarification", apply: func(q string, _ int, hasHistory bool) (QuestionType, bool) {
		if containsAny(q,
			"what did you mean", "what do you mean",
			"clarify", "i don't understand", "i dont understand",
			"can you rephrase", "explain that again",
		) {
			if hasHistory {
				return QuestionClarification, true
			}
			// Clarifying with no prior context is really a concept question.
			return QuestionConceptual, true
		}
		return "", false
	}},
	{name: "followUp", apply: func(q string, words int, hasHistory bool) (QuestionType, bool) {
		if !hasHistory {
			return "", false
		}
		if hasAnyPrefix(q, "and ", "but ", "so ", "what about", "how about", "also ") {
			return QuestionFollowUp, true
		}
		if containsAny(q, "tell me more", "elaborate", "go on", "keep going", "more detail") {
			return QuestionFollowUp, true
		}
		if words <= 5 {
			return QuestionFollowUp, true
		}
		return "", false
	}},
	{name: "general", apply: func(q string, _ int, _ bool) (QuestionType, bool) {
		if containsAny(q,
			"what topics", "tell me about", "overview",
			"summarize", "summary", "what is this channel",
			"what does this channel cover", "main themes",
		) {
			return QuestionGeneral, true
		}
		return "", false
	}},
	{name: "conceptual", apply: func(q string, _ int, _ bool) (QuestionType, bool) {
		if hasAnyPrefix(q, "how ", "why ", "should ", "is it ", "does ") ||
			containsAny(q, "explain", "advice", "best way", "how to", "what's the difference", "whats the difference") {
			return QuestionConceptual, true
		}
		return "", false
	}},
}

// Classify maps a query to its question type. Deterministic and pure: the
// same query and history flag always produce the same tag.
func Classify(query string, hasHistory bool) QuestionType {
	normalized := strings.ToLower(strings.TrimSpace(query))
	words := wordCount(normalized)
	for _, rule := range classifierRules {
		if qt, ok := rule.apply(normalized, words, hasHistory); ok {
			return qt
		}
	}
	if words > 8 {
		return QuestionConceptual
	}
	return QuestionGeneral
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
