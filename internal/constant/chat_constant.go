package constant

// Message roles as stored and replayed to the model.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const DefaultAgentType = "default"

// TitlePrompt asks the model to condense the opening user message into a
// short thread title.
const TitlePrompt = "Generate a concise, descriptive title (3-6 words maximum) for a conversation that starts with this message. Respond with ONLY the title, no quotes or extra text."

// ConversationHistoryLimit caps how many prior messages are replayed as
// model context per turn.
const ConversationHistoryLimit = 50
