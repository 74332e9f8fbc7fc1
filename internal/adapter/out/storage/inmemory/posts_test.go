package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/internal/service"

	"github.com/stretchr/testify/require"
)

func TestPostStorage_CreateAndGetByID(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()

	in := model.Post{AuthorID: "u1", Title: "t1", Content: "b1", Image: "/uploads/a.png", CategoryID: "c1"}
	out, err := st.CreatePost(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.Equal(t, in.AuthorID, out.AuthorID)
	require.Equal(t, in.Title, out.Title)
	require.Equal(t, in.Content, out.Content)
	require.Equal(t, in.Image, out.Image)
	require.Equal(t, in.CategoryID, out.CategoryID)
	require.Zero(t, out.Likes)
	require.WithinDuration(t, time.Now(), out.CreatedAt, time.Second)

	got, err := st.GetPostByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.Equal(t, out, got)
}

func TestPostStorage_GetPostByID_NotFound(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	_, err := st.GetPostByID(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestPostStorage_ListPosts(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	base := time.Now()

	seed := []model.Post{
		{AuthorID: "u1", Title: "Go generics", Content: "type params", CreatedAt: base.Add(1 * time.Minute)},
		{AuthorID: "u1", Title: "Cooking", Content: "FOO recipes", CategoryID: "food", CreatedAt: base.Add(2 * time.Minute)},
		{AuthorID: "u2", Title: "foo fighters", Content: "music", CategoryID: "music", CreatedAt: base.Add(3 * time.Minute)},
		{AuthorID: "u2", Title: "Plain", Content: "nothing here", CreatedAt: base.Add(4 * time.Minute)},
	}
	for _, p := range seed {
		_, err := st.CreatePost(context.Background(), p)
		require.NoError(t, err)
	}

	t.Run("search matches title or content case-insensitively", func(t *testing.T) {
		got, count, err := st.ListPosts(context.Background(), storage.ListPostsParams{Search: "foo", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
		require.Len(t, got, 2)
		// newest first
		require.Equal(t, "foo fighters", got[0].Title)
		require.Equal(t, "Cooking", got[1].Title)
	})

	t.Run("category filter", func(t *testing.T) {
		got, count, err := st.ListPosts(context.Background(), storage.ListPostsParams{CategoryID: "music", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), count)
		require.Equal(t, "foo fighters", got[0].Title)
	})

	t.Run("pagination keeps full match count", func(t *testing.T) {
		page1, count, err := st.ListPosts(context.Background(), storage.ListPostsParams{Limit: 3})
		require.NoError(t, err)
		require.Equal(t, int64(4), count)
		require.Len(t, page1, 3)
		require.Equal(t, "Plain", page1[0].Title)

		page2, count, err := st.ListPosts(context.Background(), storage.ListPostsParams{Offset: 3, Limit: 3})
		require.NoError(t, err)
		require.Equal(t, int64(4), count)
		require.Len(t, page2, 1)
		require.Equal(t, "Go generics", page2[0].Title)
	})

	t.Run("offset past the end", func(t *testing.T) {
		got, count, err := st.ListPosts(context.Background(), storage.ListPostsParams{Offset: 100, Limit: 3})
		require.NoError(t, err)
		require.Equal(t, int64(4), count)
		require.Empty(t, got)
	})
}

func TestPostStorage_UpdatePost(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	created, err := st.CreatePost(context.Background(), model.Post{AuthorID: "u1", Title: "old", Content: "body"})
	require.NoError(t, err)

	title := "new"
	image := "/uploads/pic.png"
	got, err := st.UpdatePost(context.Background(), created.ID, storage.PostPatch{Title: &title, Image: &image})
	require.NoError(t, err)
	require.Equal(t, "new", got.Title)
	require.Equal(t, "body", got.Content)
	require.Equal(t, "/uploads/pic.png", got.Image)
	require.Equal(t, "u1", got.AuthorID)

	_, err = st.UpdatePost(context.Background(), "missing", storage.PostPatch{Title: &title})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestPostStorage_DeletePost(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	created, err := st.CreatePost(context.Background(), model.Post{AuthorID: "u1", Title: "t", Content: "b"})
	require.NoError(t, err)

	require.NoError(t, st.DeletePost(context.Background(), created.ID))

	_, err = st.GetPostByID(context.Background(), created.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, st.DeletePost(context.Background(), created.ID), service.ErrNotFound)
}

func TestPostStorage_IncrementLikes_Sequential(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	created, err := st.CreatePost(context.Background(), model.Post{AuthorID: "u1", Title: "t", Content: "b"})
	require.NoError(t, err)

	const n = 7
	var likes int64
	for i := 0; i < n; i++ {
		likes, err = st.IncrementLikes(context.Background(), created.ID)
		require.NoError(t, err)
	}
	require.Equal(t, int64(n), likes)

	_, err = st.IncrementLikes(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestPostStorage_AddComment_AppendsInOrder(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	created, err := st.CreatePost(context.Background(), model.Post{AuthorID: "u1", Title: "t", Content: "b"})
	require.NoError(t, err)

	var last model.Post
	for i := 0; i < 3; i++ {
		last, err = st.AddComment(context.Background(), created.ID, model.Comment{
			AuthorID: "u2",
			Content:  fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
	}

	require.Len(t, last.Comments, 3)
	for i, c := range last.Comments {
		require.Equal(t, fmt.Sprintf("comment %d", i), c.Content)
		require.NotEmpty(t, c.ID)
		require.False(t, c.CreatedAt.IsZero())
	}

	_, err = st.AddComment(context.Background(), "missing", model.Comment{AuthorID: "u2", Content: "x"})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestPostStorage_GetPostAuthorID(t *testing.T) {
	t.Parallel()

	st := NewPostStorage()
	created, err := st.CreatePost(context.Background(), model.Post{AuthorID: "u1", Title: "t", Content: "b"})
	require.NoError(t, err)

	authorID, err := st.GetPostAuthorID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "u1", authorID)

	_, err = st.GetPostAuthorID(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}
