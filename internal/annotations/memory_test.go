package annotations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spanmark/internal/document"
)

func TestMemoryRepository_LoadMissing(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Load(context.Background(), "/tmp/a.txt")

	var nf *DocumentNotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "/tmp/a.txt", nf.Path)
	require.Equal(t, "no annotations for /tmp/a.txt", err.Error())
}

func TestMemoryRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	objects := []document.Span{{Label: "PERSON", Text: "hello world ", TokenIDs: []int{0, 1}}}

	saved, err := repo.Save(ctx, "a.txt", "v1", objects)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.GUID)
	require.NoError(t, err)

	objects[0].TokenIDs[0] = 9
	loaded, err := repo.Load(ctx, "a.txt")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, loaded.Objects[0].TokenIDs, "stored list is a copy")
	require.Equal(t, "v1", loaded.Version)

	loaded.Objects[0].Label = "CHANGED"
	loaded.Objects[0].TokenIDs[1] = 7
	again, err := repo.Load(ctx, "a.txt")
	require.NoError(t, err)
	require.Equal(t, "PERSON", again.Objects[0].Label)
	require.Equal(t, []int{0, 1}, again.Objects[0].TokenIDs, "loaded lists do not alias the store")

	resaved, err := repo.Save(ctx, "a.txt", "v2", nil)
	require.NoError(t, err)
	require.Equal(t, saved.GUID, resaved.GUID, "guid is stable across saves")
	require.Empty(t, resaved.Objects)
	require.NotNil(t, resaved.Objects)
}

func TestMemoryRepository_ListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Save(ctx, "b.txt", "v", nil)
	require.NoError(t, err)
	_, err = repo.Save(ctx, "a.txt", "v", nil)
	require.NoError(t, err)

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "a.txt", docs[0].Path)

	require.NoError(t, repo.Delete(ctx, "a.txt"))
	var nf *DocumentNotFoundError
	require.ErrorAs(t, repo.Delete(ctx, "a.txt"), &nf)
	require.NoError(t, repo.Close())
}
