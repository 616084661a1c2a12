// Package models holds the persisted record types of the Astro Advisor server.
package models

import "time"

// User is a registered account. PasswordHash holds a bcrypt digest and must
// never leave the service layer in any response view.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	BirthDate    string
	BirthTime    string // optional, empty when not provided
	Location     string
	IsActive     bool
	CreatedAt    time.Time
}

// UserUpdate enumerates the mutable profile fields. Nil means "leave as is".
type UserUpdate struct {
	UserName  *string
	BirthDate *string
	BirthTime *string
	Location  *string
}
