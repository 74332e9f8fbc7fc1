package model

import "time"

// Comment lives embedded in its post document, append-only.
type Comment struct {
	ID        string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
