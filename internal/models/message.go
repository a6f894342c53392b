package models

// Message roles, matching the completion API's chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one turn of a conversation, ordered by occurrence.
// It is the unit the history compactor operates on.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
