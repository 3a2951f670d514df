package handler

// --- Requests ---

// startConversationRequest opens a chat about a job. Executors omit
// executor_id; the job owner must name the executor.
type startConversationRequest struct {
	JobID      string `json:"job_id" validate:"required"`
	ExecutorID string `json:"executor_id"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// --- Responses ---

type messageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
	IsRead         bool   `json:"is_read"`
}

type conversationResponse struct {
	ID           string           `json:"id"`
	JobID        string           `json:"job_id"`
	ClientID     string           `json:"client_id"`
	ExecutorID   string           `json:"executor_id"`
	ClientName   string           `json:"client_name"`
	ExecutorName string           `json:"executor_name"`
	LastMessage  *messageResponse `json:"last_message,omitempty"`
	UnreadCount  int              `json:"unread_count"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

type notificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type notificationListResponse struct {
	Items  []notificationResponse `json:"items"`
	Unread int                    `json:"unread"`
}

type countResponse struct {
	Affected int `json:"affected"`
}
