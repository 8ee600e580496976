package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/testutil"
	"github.com/zjrosen/spanmark/internal/tracing"
)

func newTestRepository(t *testing.T) *annotationRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "annotations.db"))
	require.NoError(t, err)
	repo := newAnnotationRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestAnnotationRepository_LoadMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Load(context.Background(), "missing.txt")
	var nf *annotations.DocumentNotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "missing.txt", nf.Path)
}

func TestAnnotationRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	repo.now = func() time.Time { return time.Unix(1000, 0) }

	b := testutil.NewBuilder(t, testutil.SampleText)
	objects := b.WithSampleSpans().
		WithSpan("DATE", 9, 9, testutil.Selected()).
		Build()

	saved, err := repo.Save(ctx, "doc.txt", b.Document().Version, objects)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.GUID)
	require.NoError(t, err)
	require.Equal(t, time.Unix(1000, 0), saved.CreatedAt)

	loaded, err := repo.Load(ctx, "doc.txt")
	require.NoError(t, err)
	require.Equal(t, saved.GUID, loaded.GUID)
	require.Equal(t, b.Document().Version, loaded.Version)
	require.True(t, document.Equal(objects, loaded.Objects))
	require.True(t, loaded.Objects[3].Selected)
}

func TestAnnotationRepository_SaveReplacesList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	repo.now = func() time.Time { return time.Unix(1000, 0) }

	objects := testutil.NewBuilder(t, testutil.SampleText).WithSampleSpans().Build()
	first, err := repo.Save(ctx, "doc.txt", "v1", objects)
	require.NoError(t, err)

	repo.now = func() time.Time { return time.Unix(2000, 0) }
	second, err := repo.Save(ctx, "doc.txt", "v2", objects[1:2])
	require.NoError(t, err)
	require.Equal(t, first.GUID, second.GUID)
	require.Equal(t, time.Unix(1000, 0), second.CreatedAt)
	require.Equal(t, time.Unix(2000, 0), second.UpdatedAt)

	loaded, err := repo.Load(ctx, "doc.txt")
	require.NoError(t, err)
	require.Len(t, loaded.Objects, 1)
	require.Equal(t, "PLACE", loaded.Objects[0].Label)
	require.Equal(t, "v2", loaded.Version)
}

func TestAnnotationRepository_EmptyListPersists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Save(ctx, "doc.txt", "v1", document.Clear())
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "doc.txt")
	require.NoError(t, err)
	require.NotNil(t, loaded.Objects)
	require.Empty(t, loaded.Objects)
}

func TestAnnotationRepository_PreservesDuplicatesAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	objects := testutil.NewBuilder(t, testutil.SampleText).
		WithSpan("ORG", 6, 7).
		WithSpan("PERSON", 0, 0).
		WithSpan("ORG", 6, 7).
		Build()
	_, err := repo.Save(ctx, "doc.txt", "v1", objects)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "doc.txt")
	require.NoError(t, err)
	require.True(t, document.Equal(objects, loaded.Objects))
}

func TestAnnotationRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, path := range []string{"b.txt", "a.txt"} {
		_, err := repo.Save(ctx, path, "v", testutil.NewBuilder(t, "x y").WithSpan("PERSON", 0, 0).Build())
		require.NoError(t, err)
	}

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "a.txt", docs[0].Path)
	require.Equal(t, "b.txt", docs[1].Path)

	require.NoError(t, repo.Delete(ctx, "a.txt"))

	var count int
	require.NoError(t, repo.db.conn.QueryRow(`SELECT COUNT(*) FROM spans`).Scan(&count))
	require.Equal(t, 1, count, "spans of the deleted document cascade")

	var nf *annotations.DocumentNotFoundError
	require.True(t, errors.As(repo.Delete(ctx, "a.txt"), &nf))
}

func TestAnnotationRepository_ImplementsInterface(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	var repo annotations.Repository = db.AnnotationRepository()
	require.NoError(t, repo.Close())
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestAnnotationRepository_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	recorder := tracetest.NewSpanRecorder()
	repo.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	b := testutil.NewBuilder(t, testutil.SampleText)
	objects := b.WithSampleSpans().Build()
	_, err := repo.Save(ctx, "doc.txt", b.Document().Version, objects)
	require.NoError(t, err)
	_, err = repo.Load(ctx, "doc.txt")
	require.NoError(t, err)
	_, err = repo.Load(ctx, "missing.txt")
	require.Error(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 3)

	save, load, missing := ended[0], ended[1], ended[2]
	require.Equal(t, "store.save", save.Name())
	require.Equal(t, codes.Ok, save.Status().Code)
	require.Equal(t, "sqlite", spanAttr(save, tracing.AttrStoreDriver).AsString())
	require.Equal(t, int64(len(objects)), spanAttr(save, tracing.AttrSpanCount).AsInt64())

	require.Equal(t, "store.load", load.Name())
	require.Equal(t, "doc.txt", spanAttr(load, tracing.AttrDocumentPath).AsString())
	require.Equal(t, int64(len(objects)), spanAttr(load, tracing.AttrSpanCount).AsInt64())

	require.Equal(t, codes.Error, missing.Status().Code, "a failed load marks its span")
}
