package domain

import "github.com/google/uuid"

// NewID returns a random identifier such as "job_0b6f1c8e-...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
