// Package models defines the entities persisted by the mirror server.
package models

import "time"

// User is a mirror account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Record is one document in a user's collection. Payload carries the
// client-defined fields verbatim as JSON; the server never interprets them.
// (UserID, Collection, RecordID) is the primary key, which makes writes
// idempotent.
type Record struct {
	UserID     string
	Collection string
	RecordID   string
	Payload    []byte
	UpdatedAt  time.Time
}
