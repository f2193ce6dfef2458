package requests

// CredentialsRequest is the body of register and login. Form posts are accepted too.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AskRequest is one question from the chat UI.
type AskRequest struct {
	Question       string  `json:"question" binding:"required"`
	UseRAG         bool    `json:"use_rag"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

// HistoryQuery selects one conversation's transcript.
type HistoryQuery struct {
	ConversationID *string `form:"conversation_id"`
}
