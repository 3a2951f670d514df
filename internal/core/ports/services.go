package ports

import (
	"context"
	"time"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Name string
	Role string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// --- Auth ---

// RegisterInput carries the fields of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Avatar   string
}

// UpdateProfileInput is a partial profile update; nil fields are left alone.
type UpdateProfileInput struct {
	Name   *string
	Avatar *string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
}

// --- Jobs ---

// CreateJobInput carries all data needed to post a job.
type CreateJobInput struct {
	Title          string
	Description    string
	Category       string
	Price          float64
	Currency       string
	Deadline       time.Time
	Location       string
	Urgency        domain.Urgency
	Client         Actor
	IdempotencyKey string
}

// JobResult is returned after creating a job.
type JobResult struct {
	Job *domain.Job
	// AlreadyExisted is true when the Idempotency-Key matched an earlier job.
	AlreadyExisted bool
}

// UpdateJobInput edits the descriptive fields of a job; nil fields are kept.
type UpdateJobInput struct {
	JobID       string
	Actor       Actor
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Currency    *string
	Deadline    *time.Time
	Location    *string
	Urgency     *domain.Urgency
}

type JobService interface {
	CreateJob(ctx context.Context, input CreateJobInput) (*JobResult, error)
	GetJob(ctx context.Context, id string, viewer Actor) (*domain.Job, error)
	ListJobs(ctx context.Context, filter domain.JobFilter, viewer Actor) ([]*domain.Job, error)
	ListUserJobs(ctx context.Context, clientID string) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, input UpdateJobInput) (*domain.Job, error)
	Accept(ctx context.Context, jobID string, actor Actor) (*domain.Job, error)
	Complete(ctx context.Context, jobID string, actor Actor) (*domain.Job, error)
	Cancel(ctx context.Context, jobID string, actor Actor) (*domain.Job, error)
	DeleteJob(ctx context.Context, jobID string, actor Actor) error
	// SimilarJobs lists open jobs sharing the category or location of jobID.
	SimilarJobs(ctx context.Context, jobID string, viewer Actor) ([]*domain.Job, error)
	// Earnings totals the caller's completed jobs.
	Earnings(ctx context.Context, clientID string) (*domain.EarningsSummary, error)
}

// --- Chat ---

// StartConversationInput opens (or reopens) a chat about a job.
// When the caller owns the job CounterpartID must name the executor;
// otherwise the caller is the executor and the job owner is the client.
type StartConversationInput struct {
	JobID         string
	Caller        Actor
	CounterpartID string
}

// SendMessageInput carries one outgoing chat message.
type SendMessageInput struct {
	ConversationID string
	Sender         Actor
	Content        string
}

// ConversationView is a conversation as seen by one participant.
type ConversationView struct {
	Conversation *domain.Conversation
	UnreadCount  int
}

type ChatService interface {
	StartConversation(ctx context.Context, input StartConversationInput) (*ConversationView, error)
	SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error)
	ListConversations(ctx context.Context, userID string) ([]ConversationView, error)
	GetConversation(ctx context.Context, id string, viewer Actor) (*ConversationView, error)
	ListMessages(ctx context.Context, conversationID string, viewer Actor) ([]*domain.Message, error)
	MarkRead(ctx context.Context, conversationID string, reader Actor) (*ConversationView, error)
}

// MessagePublisher pushes new chat messages to live subscribers.
type MessagePublisher interface {
	Publish(conversationID string, msg *domain.Message)
}

// --- Notifications ---

// NotificationInput describes a notification to deliver to one user.
type NotificationInput struct {
	UserID  string
	Title   string
	Message string
	// Key selects a localized template instead of a literal Title/Message.
	Key  string
	Args map[string]string
	Type domain.NotificationType
}

// NotificationList is a user's inbox.
type NotificationList struct {
	Items  []*domain.Notification
	Unread int
}

type NotificationService interface {
	Notify(ctx context.Context, input NotificationInput) (*domain.Notification, error)
	List(ctx context.Context, userID string) (*NotificationList, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Remove(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int, error)
}

// NotificationDispatcher delivers notifications asynchronously.
type NotificationDispatcher interface {
	Enqueue(input NotificationInput)
}

// --- Moderation ---

// UserFilter narrows the admin user list. Status is "all", "active" or "blocked".
type UserFilter struct {
	Search string
	Role   string
	Status string
}

// AdminJobFilter narrows the admin job list.
type AdminJobFilter struct {
	Search   string
	Category string
}

// FileReportInput is a complaint about a job.
type FileReportInput struct {
	JobID       string
	Reporter    Actor
	Reason      string
	Description string
}

type ModerationService interface {
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.AdminUser, error)
	ListJobs(ctx context.Context, filter AdminJobFilter) ([]domain.AdminJob, error)
	ListReports(ctx context.Context, status domain.ReportStatus) ([]*domain.Report, error)
	BlockUser(ctx context.Context, id string, admin Actor) (*domain.User, error)
	UnblockUser(ctx context.Context, id string) (*domain.User, error)
	BlockJob(ctx context.Context, id string) (*domain.Job, error)
	UnblockJob(ctx context.Context, id string) (*domain.Job, error)
	DeleteUser(ctx context.Context, id string, admin Actor) error
	DeleteJob(ctx context.Context, id string) error
	FileReport(ctx context.Context, input FileReportInput) (*domain.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus, reviewer Actor) (*domain.Report, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// --- Preferences ---

type PreferenceService interface {
	Get(ctx context.Context, visitorID string) (domain.Preferences, error)
	Update(ctx context.Context, visitorID string, prefs domain.Preferences) (domain.Preferences, error)
}
