package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/internal/service"

	"github.com/google/uuid"
)

type PostStorage struct {
	mu    sync.RWMutex
	posts map[string]model.Post
	order []string // insertion order, used to break created-at ties
}

func NewPostStorage() *PostStorage {
	return &PostStorage{posts: make(map[string]model.Post)}
}

func (s *PostStorage) CreatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = uuid.NewString()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	s.posts[in.ID] = in
	s.order = append(s.order, in.ID)
	return clonePost(in), nil
}

func (s *PostStorage) GetPostByID(_ context.Context, postID string) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *PostStorage) ListPosts(_ context.Context, params storage.ListPostsParams) ([]model.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// walk insertion order backwards so the stable sort keeps the most
	// recently created post first on created-at ties
	matched := make([]model.Post, 0, len(s.posts))
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.posts[s.order[i]]
		if matches(p, params) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	count := int64(len(matched))

	start := params.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}

	out := make([]model.Post, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, clonePost(p))
	}
	return out, count, nil
}

func (s *PostStorage) UpdatePost(_ context.Context, postID string, patch storage.PostPatch) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	s.posts[postID] = p
	return clonePost(p), nil
}

func (s *PostStorage) DeletePost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return service.ErrNotFound
	}
	delete(s.posts, postID)
	for i, id := range s.order {
		if id == postID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *PostStorage) GetPostAuthorID(_ context.Context, postID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return "", service.ErrNotFound
	}
	return p.AuthorID, nil
}

func (s *PostStorage) IncrementLikes(_ context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return 0, service.ErrNotFound
	}
	p.Likes++
	s.posts[postID] = p
	return p.Likes, nil
}

func (s *PostStorage) AddComment(_ context.Context, postID string, comment model.Comment) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	comment.ID = uuid.NewString()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	p.Comments = append(append([]model.Comment(nil), p.Comments...), comment)
	s.posts[postID] = p
	return clonePost(p), nil
}

func matches(p model.Post, params storage.ListPostsParams) bool {
	if params.CategoryID != "" && p.CategoryID != params.CategoryID {
		return false
	}
	if params.Search == "" {
		return true
	}
	needle := strings.ToLower(params.Search)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle)
}

func clonePost(p model.Post) model.Post {
	p.Comments = append([]model.Comment(nil), p.Comments...)
	return p
}
