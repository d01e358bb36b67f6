package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Aditi-179/Docify/doc"
)

// MemoryStore is an in-memory implementation of DocumentStore.
// Documents are immutable values, so records share them with callers.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Record
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Record), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; ok {
		return exists(id)
	}
	now := s.now()
	s.docs[id] = &Record{ID: id, Mode: mode, Document: d, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *rec
	return &cp, nil
}

// List returns all records, most recently updated first.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, 0, len(s.docs))
	for _, rec := range s.docs {
		result = append(result, *rec)
	}
	sortRecords(result)
	return result, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[id]
	if !ok {
		return notFound(id)
	}
	rec.Mode = mode
	rec.Document = d
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
