package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/pkg/pagination"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPostsLimit = 10
	MaxPostsLimit     = 100
)

//go:generate mockgen -source=posts.go -destination=./post_storage_mock.go -package=service
type PostStorage interface {
	CreatePost(ctx context.Context, post model.Post) (model.Post, error)
	GetPostByID(ctx context.Context, postID string) (model.Post, error)
	ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, int64, error)
	UpdatePost(ctx context.Context, postID string, patch storage.PostPatch) (model.Post, error)
	DeletePost(ctx context.Context, postID string) error
	GetPostAuthorID(ctx context.Context, postID string) (string, error)
	IncrementLikes(ctx context.Context, postID string) (int64, error)
	AddComment(ctx context.Context, postID string, comment model.Comment) (model.Post, error)
}

// UserDirectory resolves author references to display fields.
type UserDirectory interface {
	GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error)
}

// CategoryDirectory resolves category references to display fields.
type CategoryDirectory interface {
	GetCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]model.Category, error)
}

type PostService struct {
	postStorage PostStorage
	users       UserDirectory
	categories  CategoryDirectory
}

func NewPostService(postStorage PostStorage, users UserDirectory, categories CategoryDirectory) *PostService {
	return &PostService{
		postStorage: postStorage,
		users:       users,
		categories:  categories,
	}
}

func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (PostView, error) {
	if err := validator.New().Struct(req); err != nil {
		return PostView{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	post, err := s.postStorage.CreatePost(ctx, model.Post{
		Title:      req.Title,
		Content:    req.Content,
		Image:      req.Image,
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		Likes:      0,
	})
	if err != nil {
		return PostView{}, err
	}
	return s.resolveOne(ctx, post)
}

func (s *PostService) GetPost(ctx context.Context, postID string) (PostView, error) {
	if postID == "" {
		return PostView{}, fmt.Errorf("%w: post id is required", ErrInvalidRequest)
	}
	post, err := s.postStorage.GetPostByID(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	return s.resolveOne(ctx, post)
}

func (s *PostService) ListPosts(ctx context.Context, req ListPostsRequest) (pagination.Page[PostView], error) {
	var page pagination.Page[PostView]

	if req.Page < 0 || req.Limit < 0 {
		return page, fmt.Errorf("%w: page and limit must be positive", ErrInvalidRequest)
	}
	if req.Page == 0 {
		req.Page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPostsLimit
	}
	if limit > MaxPostsLimit {
		limit = MaxPostsLimit
	}

	posts, count, err := s.postStorage.ListPosts(ctx, storage.ListPostsParams{
		Search:     req.Search,
		CategoryID: req.CategoryID,
		Offset:     pagination.PageRequest{Page: req.Page, Limit: limit}.Offset(),
		Limit:      limit,
	})
	if err != nil {
		return page, err
	}

	views, err := s.resolve(ctx, posts)
	if err != nil {
		return page, err
	}

	page.Items = views
	page.Page = req.Page
	page.TotalCount = count
	page.TotalPages = pagination.TotalPages(count, limit)
	return page, nil
}

func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req UpdatePostRequest) (PostView, error) {
	if userID == "" || postID == "" {
		return PostView{}, fmt.Errorf("%w: user id and post id are required", ErrInvalidRequest)
	}
	if req.Title != nil && *req.Title == "" {
		return PostView{}, fmt.Errorf("%w: title must not be empty", ErrInvalidRequest)
	}
	if req.Content != nil && *req.Content == "" {
		return PostView{}, fmt.Errorf("%w: content must not be empty", ErrInvalidRequest)
	}

	if err := s.checkOwnership(ctx, userID, postID); err != nil {
		return PostView{}, err
	}

	post, err := s.postStorage.UpdatePost(ctx, postID, storage.PostPatch{
		Title:      req.Title,
		Content:    req.Content,
		Image:      req.Image,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return PostView{}, err
	}
	return s.resolveOne(ctx, post)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	if userID == "" || postID == "" {
		return fmt.Errorf("%w: user id and post id are required", ErrInvalidRequest)
	}
	if err := s.checkOwnership(ctx, userID, postID); err != nil {
		return err
	}
	return s.postStorage.DeletePost(ctx, postID)
}

// LikePost increments unconditionally. Nothing stops the same caller from
// liking a post more than once.
func (s *PostService) LikePost(ctx context.Context, postID string) (int64, error) {
	if postID == "" {
		return 0, fmt.Errorf("%w: post id is required", ErrInvalidRequest)
	}
	return s.postStorage.IncrementLikes(ctx, postID)
}

func (s *PostService) AddComment(ctx context.Context, req AddCommentRequest) (PostView, error) {
	if err := validator.New().Struct(req); err != nil {
		return PostView{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	post, err := s.postStorage.AddComment(ctx, req.PostID, model.Comment{
		AuthorID:  req.AuthorID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return PostView{}, err
	}
	return s.resolveOne(ctx, post)
}

// checkOwnership is the single authorization rule: string equality between the
// caller and the stored author reference.
func (s *PostService) checkOwnership(ctx context.Context, userID, postID string) error {
	authorID, err := s.postStorage.GetPostAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return fmt.Errorf("%w: not the post author", ErrForbidden)
	}
	return nil
}

func (s *PostService) resolveOne(ctx context.Context, post model.Post) (PostView, error) {
	views, err := s.resolve(ctx, []model.Post{post})
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// resolve turns stored posts into views with author, category and comment
// authors replaced by their display fields.
func (s *PostService) resolve(ctx context.Context, posts []model.Post) ([]PostView, error) {
	userIDs := make([]string, 0, len(posts))
	categoryIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		userIDs = append(userIDs, p.AuthorID)
		if p.CategoryID != "" {
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
		for _, c := range p.Comments {
			userIDs = append(userIDs, c.AuthorID)
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving authors: %w", err)
	}
	categories := map[string]model.Category{}
	if len(categoryIDs) > 0 {
		categories, err = s.categories.GetCategoriesByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving categories: %w", err)
		}
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		view := PostView{
			ID:        p.ID,
			Title:     p.Title,
			Content:   p.Content,
			Image:     p.Image,
			Author:    toUserRef(p.AuthorID, users),
			Likes:     p.Likes,
			CreatedAt: p.CreatedAt,
		}
		if cat, ok := categories[p.CategoryID]; ok {
			view.Category = &cat
		}
		for _, c := range p.Comments {
			view.Comments = append(view.Comments, CommentView{
				ID:        c.ID,
				Content:   c.Content,
				Author:    toUserRef(c.AuthorID, users),
				CreatedAt: c.CreatedAt,
			})
		}
		out = append(out, view)
	}
	return out, nil
}

func toUserRef(userID string, users map[string]model.User) UserRef {
	ref := UserRef{ID: userID}
	if u, ok := users[userID]; ok {
		ref.Username = u.Username
	}
	return ref
}
