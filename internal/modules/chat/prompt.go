package chat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/domain"
)

// CreatorIdentity is the persona the assistant speaks as. Title falls back
// to the channel title when the creator has no display name.
type CreatorIdentity struct {
	Name         string
	ChannelTitle string
}

func (c CreatorIdentity) display() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	if strings.TrimSpace(c.ChannelTitle) != "" {
		return c.ChannelTitle
	}
	return "the creator"
}

// The prompt carries fewer history entries than classification sees; old
// turns add tokens without adding grounding.
const promptHistoryWindow = 6

var questionTypeGuidance = map[QuestionType]string{
	QuestionMoment:        "The user wants a specific moment. Point to the exact excerpt and always include its timestamp reference. If no excerpt matches the moment asked about, say so.",
	QuestionGeneral:       "The user wants an overview. Synthesize across the excerpts rather than dwelling on a single one.",
	QuestionConceptual:    "The user wants an explanation. Walk through the reasoning the excerpts contain, in the creator's framing.",
	QuestionFollowUp:      "This continues the previous exchange. Stay on the established topic and build on what was already said.",
	QuestionClarification: "The user did not follow the previous answer. Restate it more plainly, grounded in the same excerpts.",
}

// BuildPrompt assembles the system prompt in fixed order: grounding
// preamble, question-type guidance, confidence directive, labeled excerpts,
// bounded history, then the literal question.
func BuildPrompt(query string, chunks []*domain.TranscriptChunk, history []domain.ConversationMessage, qt QuestionType, creator CreatorIdentity, level ConfidenceLevel, videos map[uuid.UUID]*domain.Video) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an assistant that answers questions about %s's videos.\n", creator.display())
	b.WriteString("Answer ONLY from the transcript excerpts provided below. ")
	b.WriteString("If the excerpts do not contain the answer, say explicitly that the videos do not cover it. ")
	b.WriteString("Never invent facts, quotes, or timestamps.\n\n")

	if guidance, ok := questionTypeGuidance[qt]; ok {
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}

	switch level {
	case ConfidenceMedium:
		b.WriteString("The excerpts are only a partial match for this question. Hedge where the evidence is thin, and prefer saying the videos do not cover something over guessing.\n\n")
	case ConfidenceLow:
		b.WriteString("The excerpts are a weak match for this question. Only answer what they directly support; otherwise decline.\n\n")
	}

	b.WriteString("TRANSCRIPT EXCERPTS:\n")
	for i, c := range chunks {
		title := "Unknown video"
		if v, ok := videos[c.VideoID]; ok && strings.TrimSpace(v.Title) != "" {
			title = v.Title
		}
		if c.HasTimestamps() {
			fmt.Fprintf(&b, "[%d] %q at %s-%s:\n%s\n\n", i+1, title, FormatTimestamp(*c.StartTime), FormatTimestamp(*c.EndTime), c.Text)
		} else {
			fmt.Fprintf(&b, "[%d] %q (no timestamp available):\n%s\n\n", i+1, title, c.Text)
		}
	}

	if len(history) > promptHistoryWindow {
		history = history[len(history)-promptHistoryWindow:]
	}
	if len(history) > 0 {
		b.WriteString("RECENT CONVERSATION:\n")
		for _, m := range history {
			role := "User"
			if m.Role == domain.RoleAssistant {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "QUESTION: %s\n", query)
	return b.String()
}

// FormatTimestamp renders seconds as m:ss, adding the hour component only
// past the hour mark: 75 -> "1:15", 3725 -> "1:02:05".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
