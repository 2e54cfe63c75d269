package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one entry of the bounded recent chat window handed
// to the pipeline, most-recent-last. The pipeline never mutates it.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
