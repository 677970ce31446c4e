package model

import "time"

// Roles a user may hold.  ADMIN may create and delete users; everything else
// is open to any authenticated user.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a row of the `users` table.  PasswordHash never leaves the
// server: it is excluded from JSON.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – display name.
//	Email        – unique, stored lower-cased.
//	PasswordHash – bcrypt hash.
//	Role         – ADMIN or USER.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the slice of a user embedded in other records (assignee,
// note author, uploader).
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Roles lists every role in display order.
var Roles = []string{RoleAdmin, RoleUser}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleUser }
