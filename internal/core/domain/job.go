package domain

import "time"

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// validJobTransitions defines the allowed state machine transitions.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobOpen:       {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range validJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Urgency is how soon the client needs the job done.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// IsValid reports whether u is a known urgency level.
func (u Urgency) IsValid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// Categories lists the job categories offered by the marketplace, in display order.
var Categories = []string{
	"IT и программирование",
	"Дизайн",
	"Маркетинг",
	"Копирайтинг",
	"Переводы",
	"Администрирование",
	"Консультации",
	"Другое",
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Job is a task posted by a client.
type Job struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Price       float64   `json:"price" bson:"price"`
	Currency    string    `json:"currency" bson:"currency"`
	Deadline    time.Time `json:"deadline" bson:"deadline"`
	Location    string    `json:"location" bson:"location"`
	Urgency     Urgency   `json:"urgency" bson:"urgency"`
	Status      JobStatus `json:"status" bson:"status"`
	ClientID    string    `json:"client_id" bson:"client_id"`
	ClientName  string    `json:"client_name" bson:"client_name"`
	IsBlocked   bool      `json:"is_blocked" bson:"is_blocked"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// MinJobPrice is the lowest price a job may be posted or edited at.
const MinJobPrice = 100

// JobPatch holds the owner-editable fields of a job. Nil fields are left as
// stored; status, ownership and moderation flags are never part of a patch.
type JobPatch struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Currency    *string
	Deadline    *time.Time
	Location    *string
	Urgency     *Urgency
}

// Apply copies the set fields of p onto j.
func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Price != nil {
		j.Price = *p.Price
	}
	if p.Currency != nil {
		j.Currency = *p.Currency
	}
	if p.Deadline != nil {
		j.Deadline = *p.Deadline
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Urgency != nil {
		j.Urgency = *p.Urgency
	}
}
