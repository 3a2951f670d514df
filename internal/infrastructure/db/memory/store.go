// Package memory provides in-process implementations of the repository ports.
// Every collection is held newest first behind a RWMutex and values are
// copied on the way in and out, so callers never share state with the store.
package memory

import (
	"github.com/kyzmat/marketplace/internal/core/ports"
)

// NewRepositories returns a complete, empty set of in-memory stores.
func NewRepositories() *ports.Repositories {
	return &ports.Repositories{
		Users:         NewUserRepository(),
		Jobs:          NewJobRepository(),
		Chats:         NewChatRepository(),
		Notifications: NewNotificationRepository(),
		Reports:       NewReportRepository(),
		Preferences:   NewPreferenceStore(),
		Idempotency:   NewIdempotencyStore(),
	}
}

// prepend inserts v at the head of list.
func prepend[T any](list []T, v T) []T {
	list = append(list, v)
	copy(list[1:], list)
	list[0] = v
	return list
}

// indexOf returns the position of the first element matching pred, or -1.
func indexOf[T any](list []T, pred func(T) bool) int {
	for i, v := range list {
		if pred(v) {
			return i
		}
	}
	return -1
}

func remove[T any](list []T, i int) []T {
	return append(list[:i], list[i+1:]...)
}
