// Package rest is the HTTP JSON surface of the API. Handlers translate
// requests into service calls and service errors into statuses; all rules
// live in the services.
package rest

import (
	"context"
	"io"

	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type PostService interface {
	CreatePost(ctx context.Context, req service.CreatePostRequest) (service.PostView, error)
	GetPost(ctx context.Context, postID string) (service.PostView, error)
	ListPosts(ctx context.Context, req service.ListPostsRequest) (pagination.Page[service.PostView], error)
	UpdatePost(ctx context.Context, userID, postID string, req service.UpdatePostRequest) (service.PostView, error)
	DeletePost(ctx context.Context, userID, postID string) error
	LikePost(ctx context.Context, postID string) (int64, error)
	AddComment(ctx context.Context, req service.AddCommentRequest) (service.PostView, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error)
}

type UploadStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Dir() string
}

type Handler struct {
	posts      PostService
	categories CategoryService
	auth       AuthService
	uploads    UploadStore
	tokens     *service.TokenManager
}

func NewHandler(posts PostService, categories CategoryService, auth AuthService, uploads UploadStore, tokens *service.TokenManager) *Handler {
	return &Handler{
		posts:      posts,
		categories: categories,
		auth:       auth,
		uploads:    uploads,
		tokens:     tokens,
	}
}

// NewRouter wires all routes. Protected routes go through the bearer-token
// middleware; everything else is public.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	authRequired := authenticate(h.tokens)

	api := r.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/posts", h.listPosts)
		api.GET("/posts/:id", h.getPost)
		api.POST("/posts", authRequired, h.createPost)
		api.PUT("/posts/:id", authRequired, h.updatePost)
		api.DELETE("/posts/:id", authRequired, h.deletePost)
		api.POST("/posts/:id/like", h.likePost)
		api.POST("/posts/:id/comments", authRequired, h.addComment)

		api.GET("/categories", h.listCategories)
		api.POST("/categories", authRequired, h.createCategory)

		api.POST("/upload", authRequired, h.upload)
	}

	r.Static("/uploads", h.uploads.Dir())

	return r
}
