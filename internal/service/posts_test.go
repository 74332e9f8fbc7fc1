package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/pkg/pagination"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newPostService(t *testing.T) (*PostService, *MockPostStorage, *MockUserDirectory, *MockCategoryDirectory) {
	t.Helper()
	ctrl := gomock.NewController(t)
	posts := NewMockPostStorage(ctrl)
	users := NewMockUserDirectory(ctrl)
	categories := NewMockCategoryDirectory(ctrl)
	return NewPostService(posts, users, categories), posts, users, categories
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name    string
		req     CreatePostRequest
		setup   func(posts *MockPostStorage, users *MockUserDirectory)
		wantErr error
	}{
		{
			name:    "missing title",
			req:     CreatePostRequest{AuthorID: "u1", Content: "body"},
			setup:   func(_ *MockPostStorage, _ *MockUserDirectory) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "missing content",
			req:     CreatePostRequest{AuthorID: "u1", Title: "hello"},
			setup:   func(_ *MockPostStorage, _ *MockUserDirectory) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "storage error",
			req:  CreatePostRequest{AuthorID: "u1", Title: "hello", Content: "body"},
			setup: func(posts *MockPostStorage, _ *MockUserDirectory) {
				posts.EXPECT().
					CreatePost(gomock.Any(), model.Post{AuthorID: "u1", Title: "hello", Content: "body"}).
					Return(model.Post{}, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
		{
			name: "success sets author and zero likes",
			req:  CreatePostRequest{AuthorID: "u1", Title: "hello", Content: "body", Image: "/uploads/x.png"},
			setup: func(posts *MockPostStorage, users *MockUserDirectory) {
				posts.EXPECT().
					CreatePost(gomock.Any(), model.Post{AuthorID: "u1", Title: "hello", Content: "body", Image: "/uploads/x.png"}).
					Return(model.Post{ID: "p1", AuthorID: "u1", Title: "hello", Content: "body", Image: "/uploads/x.png", CreatedAt: now}, nil)
				users.EXPECT().
					GetUsersByIDs(gomock.Any(), []string{"u1"}).
					Return(map[string]model.User{"u1": {ID: "u1", Username: "alice"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, posts, users, _ := newPostService(t)
			tt.setup(posts, users)

			got, err := svc.CreatePost(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrInvalidRequest) {
					require.ErrorIs(t, err, ErrInvalidRequest)
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, "p1", got.ID)
			require.Equal(t, UserRef{ID: "u1", Username: "alice"}, got.Author)
			require.Zero(t, got.Likes)
		})
	}
}

func TestPostService_GetPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		postID  string
		setup   func(posts *MockPostStorage, users *MockUserDirectory, categories *MockCategoryDirectory)
		wantErr error
	}{
		{
			name:    "empty id",
			postID:  "",
			setup:   func(_ *MockPostStorage, _ *MockUserDirectory, _ *MockCategoryDirectory) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name:   "not found",
			postID: "missing",
			setup: func(posts *MockPostStorage, _ *MockUserDirectory, _ *MockCategoryDirectory) {
				posts.EXPECT().
					GetPostByID(gomock.Any(), "missing").
					Return(model.Post{}, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "resolves comment authors and category",
			postID: "p1",
			setup: func(posts *MockPostStorage, users *MockUserDirectory, categories *MockCategoryDirectory) {
				posts.EXPECT().
					GetPostByID(gomock.Any(), "p1").
					Return(model.Post{
						ID: "p1", AuthorID: "u1", CategoryID: "c1", Title: "t", Content: "x",
						Comments: []model.Comment{{ID: "cm1", AuthorID: "u2", Content: "nice"}},
					}, nil)
				users.EXPECT().
					GetUsersByIDs(gomock.Any(), []string{"u1", "u2"}).
					Return(map[string]model.User{
						"u1": {ID: "u1", Username: "alice"},
						"u2": {ID: "u2", Username: "bob"},
					}, nil)
				categories.EXPECT().
					GetCategoriesByIDs(gomock.Any(), []string{"c1"}).
					Return(map[string]model.Category{"c1": {ID: "c1", Name: "go"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, posts, users, categories := newPostService(t)
			tt.setup(posts, users, categories)

			got, err := svc.GetPost(context.Background(), tt.postID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "alice", got.Author.Username)
			require.NotNil(t, got.Category)
			require.Equal(t, "go", got.Category.Name)
			require.Len(t, got.Comments, 1)
			require.Equal(t, "bob", got.Comments[0].Author.Username)
		})
	}
}

func TestPostService_ListPosts(t *testing.T) {
	t.Parallel()

	svc, posts, users, _ := newPostService(t)

	stored := []model.Post{
		{ID: "p2", AuthorID: "u1", Title: "foo two", Content: "b"},
		{ID: "p1", AuthorID: "u1", Title: "foo one", Content: "a"},
	}
	posts.EXPECT().
		ListPosts(gomock.Any(), storage.ListPostsParams{Search: "foo", Offset: 0, Limit: 2}).
		Return(stored, int64(5), nil)
	users.EXPECT().
		GetUsersByIDs(gomock.Any(), []string{"u1", "u1"}).
		Return(map[string]model.User{"u1": {ID: "u1", Username: "alice"}}, nil)

	page, err := svc.ListPosts(context.Background(), ListPostsRequest{
		PageRequest: pagination.PageRequest{Page: 1, Limit: 2},
		Search:      "foo",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "p2", page.Items[0].ID)
	require.Equal(t, int64(5), page.TotalCount)
	require.Equal(t, 3, page.TotalPages) // ceil(5 / 2)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	title := "new title"
	emptyTitle := ""

	tests := []struct {
		name    string
		userID  string
		postID  string
		req     UpdatePostRequest
		setup   func(posts *MockPostStorage, users *MockUserDirectory)
		wantErr error
	}{
		{
			name:    "empty title rejected",
			userID:  "u1",
			postID:  "p1",
			req:     UpdatePostRequest{Title: &emptyTitle},
			setup:   func(_ *MockPostStorage, _ *MockUserDirectory) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name:   "post not found",
			userID: "u1",
			postID: "missing",
			req:    UpdatePostRequest{Title: &title},
			setup: func(posts *MockPostStorage, _ *MockUserDirectory) {
				posts.EXPECT().
					GetPostAuthorID(gomock.Any(), "missing").
					Return("", ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "non-author forbidden",
			userID: "u2",
			postID: "p1",
			req:    UpdatePostRequest{Title: &title},
			setup: func(posts *MockPostStorage, _ *MockUserDirectory) {
				posts.EXPECT().
					GetPostAuthorID(gomock.Any(), "p1").
					Return("u1", nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "owner merges allow-listed fields",
			userID: "u1",
			postID: "p1",
			req:    UpdatePostRequest{Title: &title},
			setup: func(posts *MockPostStorage, users *MockUserDirectory) {
				posts.EXPECT().
					GetPostAuthorID(gomock.Any(), "p1").
					Return("u1", nil)
				posts.EXPECT().
					UpdatePost(gomock.Any(), "p1", storage.PostPatch{Title: &title}).
					Return(model.Post{ID: "p1", AuthorID: "u1", Title: title, Content: "body"}, nil)
				users.EXPECT().
					GetUsersByIDs(gomock.Any(), []string{"u1"}).
					Return(map[string]model.User{"u1": {ID: "u1", Username: "alice"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, posts, users, _ := newPostService(t)
			tt.setup(posts, users)

			got, err := svc.UpdatePost(context.Background(), tt.userID, tt.postID, tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, title, got.Title)
			require.Equal(t, "u1", got.Author.ID)
		})
	}
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		userID  string
		setup   func(posts *MockPostStorage)
		wantErr error
	}{
		{
			name:   "non-author forbidden",
			userID: "u2",
			setup: func(posts *MockPostStorage) {
				posts.EXPECT().GetPostAuthorID(gomock.Any(), "p1").Return("u1", nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "owner deletes",
			userID: "u1",
			setup: func(posts *MockPostStorage) {
				posts.EXPECT().GetPostAuthorID(gomock.Any(), "p1").Return("u1", nil)
				posts.EXPECT().DeletePost(gomock.Any(), "p1").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, posts, _, _ := newPostService(t)
			tt.setup(posts)

			err := svc.DeletePost(context.Background(), tt.userID, "p1")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPostService_LikePost(t *testing.T) {
	t.Parallel()

	svc, posts, _, _ := newPostService(t)

	posts.EXPECT().IncrementLikes(gomock.Any(), "p1").Return(int64(4), nil)
	posts.EXPECT().IncrementLikes(gomock.Any(), "missing").Return(int64(0), ErrNotFound)

	likes, err := svc.LikePost(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, int64(4), likes)

	_, err = svc.LikePost(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.LikePost(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPostService_AddComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     AddCommentRequest
		setup   func(posts *MockPostStorage, users *MockUserDirectory)
		wantErr error
	}{
		{
			name:    "missing content",
			req:     AddCommentRequest{PostID: "p1", AuthorID: "u1"},
			setup:   func(_ *MockPostStorage, _ *MockUserDirectory) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "post not found",
			req:  AddCommentRequest{PostID: "missing", AuthorID: "u1", Content: "hi"},
			setup: func(posts *MockPostStorage, _ *MockUserDirectory) {
				posts.EXPECT().
					AddComment(gomock.Any(), "missing", gomock.Any()).
					Return(model.Post{}, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "appends and resolves",
			req:  AddCommentRequest{PostID: "p1", AuthorID: "u2", Content: "hi"},
			setup: func(posts *MockPostStorage, users *MockUserDirectory) {
				posts.EXPECT().
					AddComment(gomock.Any(), "p1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, c model.Comment) (model.Post, error) {
						require.Equal(t, "u2", c.AuthorID)
						require.Equal(t, "hi", c.Content)
						require.WithinDuration(t, time.Now(), c.CreatedAt, time.Second)
						return model.Post{
							ID: "p1", AuthorID: "u1",
							Comments: []model.Comment{{AuthorID: "u2", Content: "hi", CreatedAt: c.CreatedAt}},
						}, nil
					})
				users.EXPECT().
					GetUsersByIDs(gomock.Any(), []string{"u1", "u2"}).
					Return(map[string]model.User{
						"u1": {ID: "u1", Username: "alice"},
						"u2": {ID: "u2", Username: "bob"},
					}, nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, posts, users, _ := newPostService(t)
			tt.setup(posts, users)

			got, err := svc.AddComment(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, got.Comments, 1)
			require.Equal(t, "bob", got.Comments[0].Author.Username)
		})
	}
}
