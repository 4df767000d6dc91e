package entity

// Request to create a chat session
type CreateChatSessionRequest struct {
	Collection string `json:"collection,omitempty"`
	Title      string `json:"title,omitempty"`
}

type ChatSessionRead struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Collection string `json:"collection,omitempty"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Request to send a chat message
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionID         string            `json:"session_id"`
	Answer            string            `json:"answer"`
	Sources           []SourceReference `json:"sources,omitempty"`
	CondensedQuestion string            `json:"condensed_question,omitempty"`
}

type ChatHistoryItem struct {
	Role      string            `json:"role"`
	Message   string            `json:"message"`
	Sources   []SourceReference `json:"sources,omitempty"`
	CreatedAt string            `json:"created_at"`
}
