package ports

import (
	"context"
	"time"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// UserRepository persists marketplace accounts.
type UserRepository interface {
	// Create stores a new user. Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateProfile sets the patched fields and updated_at. Moderation flags
	// and counters are never written, so a concurrent block sticks.
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch, at time.Time) (*domain.User, error)
	// TouchLastActivity sets last_activity and nothing else.
	TouchLastActivity(ctx context.Context, id string, at time.Time) error
	SetBlocked(ctx context.Context, id string, blocked bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
}

// JobRepository persists jobs. Listings are ordered newest first, so a freshly
// created job is always at the head.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	// UpdateFields applies patch and sets updated_at only while the job is
	// still in expect and not blocked. Returns domain.ErrInvalidTransition
	// when the status moved and domain.ErrForbidden when it was blocked.
	UpdateFields(ctx context.Context, id string, expect domain.JobStatus, patch domain.JobPatch, at time.Time) (*domain.Job, error)
	// UpdateStatus moves the job from one status to another only if it is
	// still in from. It sets status and updated_at and nothing else.
	// Returns domain.ErrInvalidTransition when the job is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus, at time.Time) (*domain.Job, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Job, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error)
}

// ChatRepository persists conversations and their messages.
type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	FindConversation(ctx context.Context, id string) (*domain.Conversation, error)
	FindConversationByParticipants(ctx context.Context, jobID, clientID, executorID string) (*domain.Conversation, error)
	// ListConversations returns the conversations userID takes part in,
	// most recently updated first.
	ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error)
	// AppendMessage stores msg and atomically updates the owning conversation:
	// last message, updated_at and the recipient's unread counter.
	AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Conversation, error)
	// ListMessages returns the messages of a conversation in chronological order.
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)
	// MarkRead flags every message not sent by readerID as read and resets
	// readerID's unread counter.
	MarkRead(ctx context.Context, conversationID, readerID string) (*domain.Conversation, error)
}

// NotificationRepository persists per-user notifications, newest first.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// ReportRepository persists moderation reports, newest first.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	Update(ctx context.Context, r *domain.Report) error
	// List returns reports with the given status; an empty status means all.
	List(ctx context.Context, status domain.ReportStatus) ([]*domain.Report, error)
}

// PreferenceStore keeps the per-visitor preference flags.
type PreferenceStore interface {
	// Get returns domain.DefaultPreferences when nothing is stored for visitorID.
	Get(ctx context.Context, visitorID string) (domain.Preferences, error)
	Save(ctx context.Context, visitorID string, prefs domain.Preferences) error
}

// IdempotencyStore remembers which resource an idempotency key produced.
type IdempotencyStore interface {
	// Claim reserves key atomically. When the key is already taken it returns
	// the stored id, which is empty while the claiming request is still
	// creating its resource.
	Claim(ctx context.Context, scope, key string) (id string, claimed bool, err error)
	// Remember records the id produced for a claimed key.
	Remember(ctx context.Context, scope, key, id string) error
	// Release drops a claim that produced nothing.
	Release(ctx context.Context, scope, key string) error
}

// Repositories bundles every store the services need.
type Repositories struct {
	Users         UserRepository
	Jobs          JobRepository
	Chats         ChatRepository
	Notifications NotificationRepository
	Reports       ReportRepository
	Preferences   PreferenceStore
	Idempotency   IdempotencyStore
}
