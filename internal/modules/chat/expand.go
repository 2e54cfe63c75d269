package chat

import (
	"strings"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

// Short follow-ups embed poorly on their own, so the query sent to the
// embedding step gets spliced with topic keywords from the immediately
// preceding exchange. The text shown to the model and the user never
// changes; only the embedded query does.

const (
	expansionMaxKeywords   = 8
	expansionMinWordLength = 4
	expansionShortQuery    = 8
)

var expansionStopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "about": {}, "would": {}, "could": {},
	"should": {}, "there": {}, "their": {}, "they": {}, "your": {}, "yours": {},
	"really": {}, "very": {}, "just": {}, "like": {}, "been": {}, "were": {},
	"does": {}, "doing": {}, "will": {}, "them": {}, "then": {}, "than": {},
	"some": {}, "more": {}, "most": {}, "also": {}, "into": {}, "over": {},
	"because": {}, "mean": {}, "said": {}, "tell": {}, "talk": {}, "know": {},
}

var referentialMarkers = []string{
	"that", "this", " it ", "the same", "earlier", "you said", "you mentioned",
}

// Expand enriches query for the embedding step. It applies only to
// follow-up, clarification and moment questions with non-empty history;
// everything else passes through unchanged.
func Expand(query string, history []domain.ConversationMessage, qt QuestionType, depth int) string {
	if len(history) == 0 {
		return query
	}
	switch qt {
	case QuestionFollowUp, QuestionClarification, QuestionMoment:
	default:
		return query
	}

	normalized := " " + strings.ToLower(query) + " "
	short := wordCount(query) <= expansionShortQuery
	referential := containsAny(normalized, referentialMarkers...)
	if !short && !referential {
		return query
	}

	if depth <= 0 {
		depth = 4
	}
	recent := history
	if len(recent) > depth {
		recent = recent[len(recent)-depth:]
	}
	var lastUser, lastAssistant string
	for i := len(recent) - 1; i >= 0; i-- {
		switch recent[i].Role {
		case domain.RoleUser:
			if lastUser == "" {
				lastUser = recent[i].Content
			}
		case domain.RoleAssistant:
			if lastAssistant == "" {
				lastAssistant = recent[i].Content
			}
		}
	}

	keywords := harvestKeywords(lastUser+" "+lastAssistant, normalized)
	if len(keywords) == 0 {
		return query
	}
	return query + " " + strings.Join(keywords, " ")
}

// harvestKeywords pulls distinct topic words out of the prior exchange,
// skipping stopwords, short words and anything already in the query.
func harvestKeywords(text, normalizedQuery string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,!?;:\"'()[]")
		if len(word) < expansionMinWordLength {
			continue
		}
		if _, stop := expansionStopwords[word]; stop {
			continue
		}
		if strings.Contains(normalizedQuery, word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == expansionMaxKeywords {
			break
		}
	}
	return keywords
}
