package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
)

// dirtyState tracks what needs flushing for a single document.
type dirtyState struct {
	created bool   // created locally but not yet in backing store
	deleted bool   // deleted locally, backing copy must go
	gen     uint64 // bumped on every local write
}

// CachedStore wraps a backing DocumentStore with an in-memory cache.
// All reads and writes are served from the cache. Dirty documents are
// flushed to the backing store periodically in the background.
type CachedStore struct {
	cache         *MemoryStore
	backing       DocumentStore
	logger        *zap.Logger
	mu            sync.Mutex
	dirty         map[string]*dirtyState
	gen           uint64
	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
}

// NewCachedStore creates a CachedStore that caches in memory and flushes
// dirty documents to the backing store every flushInterval.
func NewCachedStore(backing DocumentStore, flushInterval time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	cs := &CachedStore{
		cache:         NewMemoryStore(),
		backing:       backing,
		logger:        logger,
		dirty:         make(map[string]*dirtyState),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go cs.flushLoop()
	return cs
}

// markLocked records a local write. cs.mu must be held.
func (cs *CachedStore) markLocked(id string) *dirtyState {
	cs.gen++
	ds := cs.dirty[id]
	if ds == nil {
		ds = &dirtyState{}
		cs.dirty[id] = ds
	}
	ds.gen = cs.gen
	return ds
}

func (cs *CachedStore) pendingDelete(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ds := cs.dirty[id]
	return ds != nil && ds.deleted
}

func (cs *CachedStore) Create(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	if _, err := cs.cache.Get(ctx, id); err == nil {
		return exists(id)
	}
	if !cs.pendingDelete(id) {
		if _, err := cs.backing.Get(ctx, id); err == nil {
			return exists(id)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if err := cs.cache.Create(ctx, id, mode, d); err != nil {
		return err
	}
	cs.mu.Lock()
	ds := cs.markLocked(id)
	// A pending delete still has to reach the backing store first.
	ds.created = !ds.deleted
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := cs.cache.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if cs.pendingDelete(id) {
		return nil, notFound(id)
	}
	// Cache miss, load from backing store.
	if err := cs.loadFromBacking(ctx, id); err != nil {
		return nil, err
	}
	return cs.cache.Get(ctx, id)
}

// List merges cached records over the backing store's, hiding pending
// deletes.
func (cs *CachedStore) List(ctx context.Context) ([]Record, error) {
	backed, err := cs.backing.List(ctx)
	if err != nil {
		return nil, err
	}
	cached, _ := cs.cache.List(ctx)

	byID := make(map[string]Record, len(backed)+len(cached))
	for _, rec := range backed {
		byID[rec.ID] = rec
	}
	for _, rec := range cached {
		byID[rec.ID] = rec
	}
	cs.mu.Lock()
	for id, ds := range cs.dirty {
		if ds.deleted {
			if !cs.cache.has(id) {
				delete(byID, id)
			}
		}
	}
	cs.mu.Unlock()

	result := make([]Record, 0, len(byID))
	for _, rec := range byID {
		result = append(result, rec)
	}
	sortRecords(result)
	return result, nil
}

func (cs *CachedStore) Update(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	// Ensure doc is in cache.
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.Update(ctx, id, mode, d); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.markLocked(id)
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) Delete(ctx context.Context, id string) error {
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.Delete(ctx, id); err != nil {
		return err
	}
	cs.mu.Lock()
	ds := cs.markLocked(id)
	if ds.created {
		// Never reached the backing store.
		delete(cs.dirty, id)
	} else {
		ds.deleted = true
	}
	cs.mu.Unlock()
	return nil
}

// loadFromBacking copies a document from the backing store into the cache.
func (cs *CachedStore) loadFromBacking(ctx context.Context, id string) error {
	rec, err := cs.backing.Get(ctx, id)
	if err != nil {
		return err
	}
	cs.cache.mu.Lock()
	if _, ok := cs.cache.docs[id]; !ok {
		cp := *rec
		cs.cache.docs[id] = &cp
	}
	cs.cache.mu.Unlock()
	return nil
}

func (cs *CachedStore) flushLoop() {
	ticker := time.NewTicker(cs.flushInterval)
	defer ticker.Stop()
	defer close(cs.done)

	for {
		select {
		case <-ticker.C:
			cs.flush()
		case <-cs.stop:
			cs.flush()
			return
		}
	}
}

// flush writes all dirty documents to the backing store.
func (cs *CachedStore) flush() {
	cs.mu.Lock()
	snapshot := make(map[string]dirtyState, len(cs.dirty))
	for id, ds := range cs.dirty {
		snapshot[id] = *ds
	}
	cs.mu.Unlock()

	ctx := context.Background()

	for id, ds := range snapshot {
		if err := cs.flushOne(ctx, id, ds); err != nil {
			// Stays dirty, retried next cycle.
			cs.logger.Warn("cached store: flush failed", zap.String("doc", id), zap.Error(err))
			continue
		}

		cs.mu.Lock()
		if cur := cs.dirty[id]; cur != nil {
			if cur.gen == ds.gen {
				delete(cs.dirty, id)
			} else {
				// Newer writes arrived; the backing copy now exists or is gone.
				if ds.deleted {
					cur.deleted = false
					cur.created = cs.cache.has(id)
				} else {
					cur.created = false
				}
			}
		}
		cs.mu.Unlock()
	}
}

func (cs *CachedStore) flushOne(ctx context.Context, id string, ds dirtyState) error {
	if ds.deleted {
		if err := cs.backing.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if !cs.cache.has(id) {
			return nil
		}
	}
	rec, err := cs.cache.Get(ctx, id)
	if err != nil {
		// Deleted locally after the snapshot; the next cycle handles it.
		return nil
	}
	if ds.created || ds.deleted {
		err := cs.backing.Create(ctx, id, rec.Mode, rec.Document)
		if err == nil || !errors.Is(err, ErrExists) {
			return err
		}
	}
	return cs.backing.Update(ctx, id, rec.Mode, rec.Document)
}

// Close signals the flush loop to perform a final flush and waits for it
// to complete.
func (cs *CachedStore) Close() {
	close(cs.stop)
	<-cs.done
}

func (s *MemoryStore) has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}
