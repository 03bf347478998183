package domain

import "time"

// Entry is a single guestbook submission.
// It does not depend on Gin, Postgres, Badger or Redis.
type Entry struct {
	ID      int64
	Name    string
	Message string

	CreatedAt time.Time
}
