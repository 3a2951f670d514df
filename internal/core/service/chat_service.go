package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

const maxMessageLength = 4000

type ChatService struct {
	chats     ports.ChatRepository
	jobs      ports.JobRepository
	users     ports.UserRepository
	publisher ports.MessagePublisher
	notifier  ports.NotificationDispatcher
	limiter   *KeyedLimiter
	log       zerolog.Logger
	now       func() time.Time
}

// NewChatService wires the chat use cases. publisher, notifier and limiter may be nil.
func NewChatService(
	chats ports.ChatRepository,
	jobs ports.JobRepository,
	users ports.UserRepository,
	publisher ports.MessagePublisher,
	notifier ports.NotificationDispatcher,
	limiter *KeyedLimiter,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		chats:     chats,
		jobs:      jobs,
		users:     users,
		publisher: publisher,
		notifier:  notifier,
		limiter:   limiter,
		log:       log,
		now:       time.Now,
	}
}

// StartConversation returns the conversation between the job owner and an
// executor, creating it at the head of the list if it does not exist yet.
func (s *ChatService) StartConversation(ctx context.Context, in ports.StartConversationInput) (*ports.ConversationView, error) {
	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}

	clientID, executorID := job.ClientID, in.Caller.ID
	if in.Caller.ID == job.ClientID {
		if in.CounterpartID == "" || in.CounterpartID == job.ClientID {
			return nil, fmt.Errorf("%w: executor is required", domain.ErrValidation)
		}
		executorID = in.CounterpartID
	}

	existing, err := s.chats.FindConversationByParticipants(ctx, job.ID, clientID, executorID)
	if err == nil {
		return s.view(existing, in.Caller.ID), nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, err
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("start conversation: client: %w", err)
	}
	executor, err := s.users.FindByID(ctx, executorID)
	if err != nil {
		return nil, fmt.Errorf("start conversation: executor: %w", err)
	}
	if executor.Role != domain.RoleExecutor {
		return nil, fmt.Errorf("%w: counterpart is not an executor", domain.ErrValidation)
	}

	now := s.now().UTC()
	conv := &domain.Conversation{
		ID:           domain.NewID("conv"),
		JobID:        job.ID,
		ClientID:     client.ID,
		ExecutorID:   executor.ID,
		ClientName:   client.Name,
		ExecutorName: executor.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.chats.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	s.log.Info().Str("conversation_id", conv.ID).Str("job_id", job.ID).Msg("conversation started")
	return s.view(conv, in.Caller.ID), nil
}

// SendMessage appends a message and updates the conversation's last message,
// updated_at and the counterpart's unread count. The counterpart also gets a
// notification and live subscribers receive the message.
func (s *ChatService) SendMessage(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", domain.ErrValidation)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", domain.ErrValidation, maxMessageLength)
	}

	conv, err := s.chats.FindConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(in.Sender.ID) {
		return nil, domain.ErrForbidden
	}

	sender, err := s.users.FindByID(ctx, in.Sender.ID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if sender.IsBlocked {
		return nil, domain.ErrUserBlocked
	}
	if s.limiter != nil && !s.limiter.Allow(sender.ID) {
		return nil, domain.ErrRateLimited
	}

	msg := &domain.Message{
		ID:             domain.NewID("msg"),
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		Content:        content,
		Timestamp:      s.now().UTC(),
	}
	if _, err := s.chats.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(conv.ID, msg)
	}
	if s.notifier != nil {
		recipient, _ := conv.Counterpart(sender.ID)
		s.notifier.Enqueue(ports.NotificationInput{
			UserID: recipient,
			Key:    domain.NotificationNewMessage,
			Args:   map[string]string{"sender": sender.Name, "preview": preview(content)},
			Type:   domain.NotificationInfo,
		})
	}

	s.log.Debug().Str("conversation_id", conv.ID).Str("sender_id", sender.ID).Msg("message sent")
	return msg, nil
}

// ListConversations returns the caller's conversations with their own unread counts.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]ports.ConversationView, error) {
	convs, err := s.chats.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ports.ConversationView, 0, len(convs))
	for _, c := range convs {
		out = append(out, *s.view(c, userID))
	}
	return out, nil
}

func (s *ChatService) GetConversation(ctx context.Context, id string, viewer ports.Actor) (*ports.ConversationView, error) {
	conv, err := s.participantConversation(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	return s.view(conv, viewer.ID), nil
}

func (s *ChatService) ListMessages(ctx context.Context, conversationID string, viewer ports.Actor) ([]*domain.Message, error) {
	if _, err := s.participantConversation(ctx, conversationID, viewer); err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, conversationID)
}

// MarkRead marks the counterpart's messages as read for reader.
func (s *ChatService) MarkRead(ctx context.Context, conversationID string, reader ports.Actor) (*ports.ConversationView, error) {
	conv, err := s.chats.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(reader.ID) {
		return nil, domain.ErrForbidden
	}
	updated, err := s.chats.MarkRead(ctx, conversationID, reader.ID)
	if err != nil {
		return nil, err
	}
	return s.view(updated, reader.ID), nil
}

// participantConversation loads a conversation visible to viewer. Admins may
// read any conversation.
func (s *ChatService) participantConversation(ctx context.Context, id string, viewer ports.Actor) (*domain.Conversation, error) {
	conv, err := s.chats.FindConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(viewer.ID) && !viewer.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}

func (s *ChatService) view(c *domain.Conversation, userID string) *ports.ConversationView {
	return &ports.ConversationView{Conversation: c, UnreadCount: c.UnreadFor(userID)}
}

func preview(content string) string {
	const max = 80
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max]) + "…"
}
