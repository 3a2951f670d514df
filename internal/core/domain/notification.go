package domain

import "time"

// NotificationType drives how a notification is rendered.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification keys rendered per reader language. The title and body live
// under <key>.title and <key>.message in the locale tables.
const (
	NotificationJobAccepted = "notification.jobAccepted"
	NotificationNewMessage  = "notification.newMessage"
)

// Notification is a message addressed to one user. When Key is set, Title
// and Message are rendered from the locale tables with Args at read time.
type Notification struct {
	ID        string            `json:"id" bson:"_id"`
	UserID    string            `json:"user_id" bson:"user_id"`
	Title     string            `json:"title" bson:"title"`
	Message   string            `json:"message" bson:"message"`
	Key       string            `json:"key,omitempty" bson:"key,omitempty"`
	Args      map[string]string `json:"args,omitempty" bson:"args,omitempty"`
	Type      NotificationType  `json:"type" bson:"type"`
	IsRead    bool              `json:"is_read" bson:"is_read"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}
