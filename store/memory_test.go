package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditi-179/Docify/doc"
)

func sampleDoc(title string) *doc.GeneratedDocument {
	return doc.NewDocument(title, []doc.Section{
		{ID: "1", Heading: "Intro", Content: "Hello there.", Level: 1},
		{ID: "2", Heading: "Body", Content: "- one\n- two", Level: 2},
	}, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
}

// testDocumentStore runs the behavior every DocumentStore shares.
func testDocumentStore(t *testing.T, newStore func(t *testing.T) DocumentStore) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		s := newStore(t)
		d := sampleDoc("Report")
		require.NoError(t, s.Create(ctx, "doc1", doc.ModeTextToDoc, d))

		rec, err := s.Get(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, "doc1", rec.ID)
		assert.Equal(t, doc.ModeTextToDoc, rec.Mode)
		require.NotNil(t, rec.Document)
		assert.Equal(t, d.Title, rec.Document.Title)
		assert.Equal(t, d.Content, rec.Document.Content)
		assert.Equal(t, d.Sections, rec.Document.Sections)
		assert.True(t, d.SameIdentity(rec.Document))
		assert.False(t, rec.CreatedAt.IsZero())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("a")))
		err := s.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("b"))
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EmptyRecord", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, "doc1", doc.ModeDocToDoc, nil))
		rec, err := s.Get(ctx, "doc1")
		require.NoError(t, err)
		assert.Nil(t, rec.Document)
		assert.Equal(t, doc.ModeDocToDoc, rec.Mode)
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		d := sampleDoc("Report")
		require.NoError(t, s.Create(ctx, "doc1", doc.ModeTextToDoc, d))
		require.NoError(t, s.Update(ctx, "doc1", doc.ModeReformatter, d.WithContent("edited")))

		rec, err := s.Get(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, doc.ModeReformatter, rec.Mode)
		assert.Equal(t, "edited", rec.Document.Content)

		err = s.Update(ctx, "missing", doc.ModeTextToDoc, d)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, s.Create(ctx, id, doc.ModePromptToDoc, sampleDoc(id)))
		}
		recs, err := s.List(ctx)
		require.NoError(t, err)
		ids := make(map[string]bool)
		for _, r := range recs {
			ids[r.ID] = true
		}
		assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("x")))
		require.NoError(t, s.Delete(ctx, "doc1"))

		_, err := s.Get(ctx, "doc1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "doc1"), ErrNotFound)
	})

	t.Run("Save", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Save(ctx, s, "doc1", doc.ModeTextToDoc, sampleDoc("first")))
		require.NoError(t, Save(ctx, s, "doc1", doc.ModeTextToDoc, sampleDoc("second")))
		rec, err := s.Get(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, "second", rec.Document.Title)
	})
}

func TestMemoryStore(t *testing.T) {
	testDocumentStore(t, func(t *testing.T) DocumentStore { return NewMemoryStore() })
}

func TestMemoryStore_ListOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	require.NoError(t, s.Create(ctx, "old", doc.ModeTextToDoc, sampleDoc("old")))
	require.NoError(t, s.Create(ctx, "new", doc.ModeTextToDoc, sampleDoc("new")))
	require.NoError(t, s.Update(ctx, "old", doc.ModeTextToDoc, sampleDoc("touched")))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "old", recs[0].ID)
	assert.Equal(t, "new", recs[1].ID)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("x")))

	rec, err := s.Get(ctx, "doc1")
	require.NoError(t, err)
	rec.Mode = doc.ModeReformatter

	again, err := s.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, doc.ModeTextToDoc, again.Mode)
}
