// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Every user belongs to exactly one
// organization; the super-admin is not a User.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID string
	CreatedAt      time.Time
	LastLoginAt    *time.Time
}

// UserUpdate is a partial update. A nil field is left unchanged.
type UserUpdate struct {
	PasswordHash *string
	Role         *Role
	LastLoginAt  *time.Time
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.PasswordHash == nil && u.Role == nil && u.LastLoginAt == nil
}
