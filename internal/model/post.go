package model

import "time"

type Post struct {
	ID         string
	Title      string
	Content    string
	Image      string
	AuthorID   string
	CategoryID string
	Likes      int64
	Comments   []Comment
	CreatedAt  time.Time
}
