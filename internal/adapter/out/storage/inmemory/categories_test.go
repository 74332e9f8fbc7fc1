package inmemory

import (
	"context"
	"testing"

	"inkwell/internal/model"
	"inkwell/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCategoryStorage(t *testing.T) {
	t.Parallel()

	st := NewCategoryStorage()

	golang, err := st.CreateCategory(context.Background(), model.Category{Name: "go"})
	require.NoError(t, err)
	require.NotEmpty(t, golang.ID)

	_, err = st.CreateCategory(context.Background(), model.Category{Name: "go"})
	require.ErrorIs(t, err, service.ErrConflict)

	music, err := st.CreateCategory(context.Background(), model.Category{Name: "music"})
	require.NoError(t, err)

	got, err := st.GetCategoryByID(context.Background(), golang.ID)
	require.NoError(t, err)
	require.Equal(t, "go", got.Name)

	_, err = st.GetCategoryByID(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrNotFound)

	all, err := st.ListCategories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.Category{golang, music}, all)

	byID, err := st.GetCategoriesByIDs(context.Background(), []string{music.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Equal(t, "music", byID[music.ID].Name)
}
