package memory

import (
	"context"
	"sync"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// ChatRepository keeps conversations most recently updated first and each
// conversation's messages in chronological order.
type ChatRepository struct {
	mu       sync.RWMutex
	convs    []*domain.Conversation
	messages map[string][]*domain.Message
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{messages: make(map[string][]*domain.Message)}
}

func cloneConversation(c *domain.Conversation) *domain.Conversation {
	out := *c
	if c.LastMessage != nil {
		m := *c.LastMessage
		out.LastMessage = &m
	}
	return &out
}

func (r *ChatRepository) find(id string) int {
	return indexOf(r.convs, func(x *domain.Conversation) bool { return x.ID == id })
}

func (r *ChatRepository) CreateConversation(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs = prepend(r.convs, cloneConversation(c))
	return nil
}

func (r *ChatRepository) FindConversation(_ context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.find(id)
	if i < 0 {
		return nil, domain.ErrConversationNotFound
	}
	return cloneConversation(r.convs[i]), nil
}

func (r *ChatRepository) FindConversationByParticipants(_ context.Context, jobID, clientID, executorID string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := indexOf(r.convs, func(x *domain.Conversation) bool {
		return x.JobID == jobID && x.ClientID == clientID && x.ExecutorID == executorID
	})
	if i < 0 {
		return nil, domain.ErrConversationNotFound
	}
	return cloneConversation(r.convs[i]), nil
}

func (r *ChatRepository) ListConversations(_ context.Context, userID string) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Conversation, 0)
	for _, c := range r.convs {
		if c.IsParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	return out, nil
}

// AppendMessage stores msg and moves its conversation to the head of the list.
func (r *ChatRepository) AppendMessage(_ context.Context, msg *domain.Message) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(msg.ConversationID)
	if i < 0 {
		return nil, domain.ErrConversationNotFound
	}
	m := *msg
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &m)

	conv := r.convs[i]
	last := m
	conv.RecordIncoming(&last)
	r.convs = prepend(remove(r.convs, i), conv)
	return cloneConversation(conv), nil
}

func (r *ChatRepository) ListMessages(_ context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.find(conversationID) < 0 {
		return nil, domain.ErrConversationNotFound
	}
	src := r.messages[conversationID]
	out := make([]*domain.Message, 0, len(src))
	for _, m := range src {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *ChatRepository) MarkRead(_ context.Context, conversationID, readerID string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(conversationID)
	if i < 0 {
		return nil, domain.ErrConversationNotFound
	}
	for _, m := range r.messages[conversationID] {
		if m.SenderID != readerID {
			m.IsRead = true
		}
	}
	conv := r.convs[i]
	if conv.LastMessage != nil && conv.LastMessage.SenderID != readerID {
		conv.LastMessage.IsRead = true
	}
	conv.ResetUnread(readerID)
	return cloneConversation(conv), nil
}
