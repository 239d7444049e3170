package domain

import "time"

// ForumThread is authored either by a user or by an anonymous client; at
// least one of UserID and AnonID is set.
type ForumThread struct {
	ID        string
	UserID    string
	AnonID    string
	Title     string
	Content   string
	CreatedAt time.Time
}

type ForumPost struct {
	ID        string
	ThreadID  string
	UserID    string
	AnonID    string
	Content   string
	CreatedAt time.Time
}
