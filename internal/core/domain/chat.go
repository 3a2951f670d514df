package domain

import "time"

// Message is a single chat line. It belongs to exactly one conversation.
type Message struct {
	ID             string    `json:"id" bson:"_id"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	SenderID       string    `json:"sender_id" bson:"sender_id"`
	SenderName     string    `json:"sender_name" bson:"sender_name"`
	Content        string    `json:"content" bson:"content"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	IsRead         bool      `json:"is_read" bson:"is_read"`
}

// Conversation links a client and an executor around one job.
// Unread counters are kept per participant.
type Conversation struct {
	ID             string    `json:"id" bson:"_id"`
	JobID          string    `json:"job_id" bson:"job_id"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	ExecutorID     string    `json:"executor_id" bson:"executor_id"`
	ClientName     string    `json:"client_name" bson:"client_name"`
	ExecutorName   string    `json:"executor_name" bson:"executor_name"`
	LastMessage    *Message  `json:"last_message,omitempty" bson:"last_message,omitempty"`
	ClientUnread   int       `json:"-" bson:"client_unread"`
	ExecutorUnread int       `json:"-" bson:"executor_unread"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// IsParticipant reports whether userID is the client or the executor.
func (c *Conversation) IsParticipant(userID string) bool {
	return userID != "" && (userID == c.ClientID || userID == c.ExecutorID)
}

// Counterpart returns the id and name of the participant other than userID.
func (c *Conversation) Counterpart(userID string) (id, name string) {
	if userID == c.ClientID {
		return c.ExecutorID, c.ExecutorName
	}
	return c.ClientID, c.ClientName
}

// UnreadFor returns how many messages userID has not read yet.
func (c *Conversation) UnreadFor(userID string) int {
	switch userID {
	case c.ClientID:
		return c.ClientUnread
	case c.ExecutorID:
		return c.ExecutorUnread
	}
	return 0
}

// RecordIncoming applies msg to the conversation: it becomes the last message
// and the recipient's unread counter grows by one.
func (c *Conversation) RecordIncoming(msg *Message) {
	c.LastMessage = msg
	c.UpdatedAt = msg.Timestamp
	if msg.SenderID == c.ClientID {
		c.ExecutorUnread++
	} else {
		c.ClientUnread++
	}
}

// ResetUnread clears the unread counter of userID.
func (c *Conversation) ResetUnread(userID string) {
	switch userID {
	case c.ClientID:
		c.ClientUnread = 0
	case c.ExecutorID:
		c.ExecutorUnread = 0
	}
}
