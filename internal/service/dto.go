package service

import (
	"time"

	"inkwell/internal/model"
	"inkwell/pkg/pagination"
)

type CreatePostRequest struct {
	AuthorID   string `validate:"required"`
	Title      string `validate:"required"`
	Content    string `validate:"required"`
	CategoryID string
	Image      string
}

// UpdatePostRequest carries only the mutable post fields. Author and id are
// never part of an update.
type UpdatePostRequest struct {
	Title      *string
	Content    *string
	Image      *string
	CategoryID *string
}

type ListPostsRequest struct {
	pagination.PageRequest
	Search     string
	CategoryID string
}

type AddCommentRequest struct {
	PostID   string `validate:"required"`
	AuthorID string `validate:"required"`
	Content  string `validate:"required"`
}

type RegisterRequest struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// UserRef is an author resolved to its display fields.
type UserRef struct {
	ID       string
	Username string
}

type CommentView struct {
	ID        string
	Content   string
	Author    UserRef
	CreatedAt time.Time
}

// PostView is a post with author, category and comment authors resolved.
type PostView struct {
	ID        string
	Title     string
	Content   string
	Image     string
	Author    UserRef
	Category  *model.Category
	Likes     int64
	Comments  []CommentView
	CreatedAt time.Time
}
