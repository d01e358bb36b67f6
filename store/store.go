// Package store persists generated documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aditi-179/Docify/doc"
)

var (
	// ErrNotFound is returned when no record exists for an ID.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Create when the ID is taken.
	ErrExists = errors.New("document already exists")
)

// Record is a stored document together with the workflow that produced it.
type Record struct {
	ID        string
	Mode      doc.Mode
	Document  *doc.GeneratedDocument
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore abstracts document persistence.
// Implementations: MemoryStore, CachedStore, FirestoreStore, SQLStore.
type DocumentStore interface {
	Create(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error
	Delete(ctx context.Context, id string) error
}

// Save updates the record for id, creating it first if it does not exist.
func Save(ctx context.Context, s DocumentStore, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	err := s.Update(ctx, id, mode, d)
	if errors.Is(err, ErrNotFound) {
		err = s.Create(ctx, id, mode, d)
	}
	return err
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

func exists(id string) error {
	return fmt.Errorf("%w: %q", ErrExists, id)
}
