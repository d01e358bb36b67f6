package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditi-179/Docify/doc"
)

func TestCachedStore(t *testing.T) {
	testDocumentStore(t, func(t *testing.T) DocumentStore {
		cs := NewCachedStore(NewMemoryStore(), time.Hour, nil)
		t.Cleanup(cs.Close)
		return cs
	})
}

func TestCachedStore_ReadThrough(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, backing.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("stored")))

	cs := NewCachedStore(backing, time.Hour, nil) // long interval, no auto flush
	defer cs.Close()

	rec, err := cs.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "stored", rec.Document.Title)

	err = cs.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("dup"))
	assert.ErrorIs(t, err, ErrExists)
}

func TestCachedStore_WriteBehind(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	cs := NewCachedStore(backing, 20*time.Millisecond, nil)
	defer cs.Close()

	require.NoError(t, cs.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("hello")))

	// The cache answers before any flush.
	rec, err := cs.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Document.Title)

	require.Eventually(t, func() bool {
		_, err := backing.Get(ctx, "doc1")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, cs.Update(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("world")))
	require.Eventually(t, func() bool {
		rec, err := backing.Get(ctx, "doc1")
		return err == nil && rec.Document.Title == "world"
	}, time.Second, 10*time.Millisecond)
}

func TestCachedStore_CloseFlushes(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	cs := NewCachedStore(backing, time.Hour, nil)
	require.NoError(t, cs.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("hello")))
	require.NoError(t, cs.Update(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("hello").WithContent("edited")))

	_, err := backing.Get(ctx, "doc1")
	require.ErrorIs(t, err, ErrNotFound)

	// Close triggers final flush.
	cs.Close()

	rec, err := backing.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "edited", rec.Document.Content)
}

func TestCachedStore_DeleteFlushes(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, backing.Create(ctx, "stored", doc.ModeTextToDoc, sampleDoc("a")))

	cs := NewCachedStore(backing, time.Hour, nil)
	require.NoError(t, cs.Delete(ctx, "stored"))

	// Pending deletes are hidden before the flush.
	_, err := cs.Get(ctx, "stored")
	assert.ErrorIs(t, err, ErrNotFound)
	recs, err := cs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	cs.Close()
	_, err = backing.Get(ctx, "stored")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStore_DeleteThenRecreate(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, backing.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("old")))

	cs := NewCachedStore(backing, time.Hour, nil)
	require.NoError(t, cs.Delete(ctx, "doc1"))
	require.NoError(t, cs.Create(ctx, "doc1", doc.ModePromptToDoc, sampleDoc("new")))
	cs.Close()

	rec, err := backing.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Document.Title)
	assert.Equal(t, doc.ModePromptToDoc, rec.Mode)
}

func TestCachedStore_CreateThenDeleteNeverFlushes(t *testing.T) {
	backing := &countingStore{DocumentStore: NewMemoryStore()}
	ctx := context.Background()

	cs := NewCachedStore(backing, time.Hour, nil)
	require.NoError(t, cs.Create(ctx, "tmp", doc.ModeTextToDoc, sampleDoc("x")))
	require.NoError(t, cs.Delete(ctx, "tmp"))
	cs.Close()

	assert.Zero(t, backing.writes.Load())
}

func TestCachedStore_ListMergesPending(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, backing.Create(ctx, "a", doc.ModeTextToDoc, sampleDoc("a")))

	cs := NewCachedStore(backing, time.Hour, nil)
	defer cs.Close()
	require.NoError(t, cs.Create(ctx, "b", doc.ModeTextToDoc, sampleDoc("b")))

	recs, err := cs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestCachedStore_RetriesFailedFlush(t *testing.T) {
	backing := &countingStore{DocumentStore: NewMemoryStore()}
	backing.failures.Store(2)
	ctx := context.Background()

	cs := NewCachedStore(backing, 10*time.Millisecond, nil)
	defer cs.Close()
	require.NoError(t, cs.Create(ctx, "doc1", doc.ModeTextToDoc, sampleDoc("x")))

	require.Eventually(t, func() bool {
		_, err := backing.DocumentStore.Get(ctx, "doc1")
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

// countingStore counts writes and fails the first failures of them.
type countingStore struct {
	DocumentStore
	writes   atomic.Int64
	failures atomic.Int64
}

func (s *countingStore) write() error {
	s.writes.Add(1)
	if s.failures.Add(-1) >= 0 {
		return errors.New("backing unavailable")
	}
	return nil
}

func (s *countingStore) Create(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.DocumentStore.Create(ctx, id, mode, d)
}

func (s *countingStore) Update(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.DocumentStore.Update(ctx, id, mode, d)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	if err := s.write(); err != nil {
		return err
	}
	return s.DocumentStore.Delete(ctx, id)
}
