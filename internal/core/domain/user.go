package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleClient   = "client"
	RoleExecutor = "executor"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleClient, RoleExecutor:
		return true
	}
	return false
}

// User models an authenticated actor in the marketplace.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	IsBlocked    bool      `json:"is_blocked" bson:"is_blocked"`
	Rating       float64   `json:"rating" bson:"rating"`
	LastActivity time.Time `json:"last_activity" bson:"last_activity"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ProfilePatch holds the self-editable profile fields. Nil fields are left as stored.
type ProfilePatch struct {
	Name   *string
	Avatar *string
}

// Apply copies the set fields of p onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
