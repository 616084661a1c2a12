package models

import "time"

// Reading is one generated advice record. UserID is nil for anonymous
// "quick" readings; once set it is never changed.
type Reading struct {
	ID        string
	UserID    *string
	Name      string
	BirthDate string
	BirthTime string // optional, empty when not provided
	Location  string
	Advice    string
	CreatedAt time.Time
}
