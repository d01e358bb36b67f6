package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Aditi-179/Docify/doc"
)

// FirestoreStore is a Firestore-backed implementation of DocumentStore.
// Each record is one document in the collection; sections are stored as an
// array of maps.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func documentFields(mode doc.Mode, d *doc.GeneratedDocument) map[string]interface{} {
	fields := map[string]interface{}{"mode": string(mode)}
	if d == nil {
		return fields
	}
	sections := make([]map[string]interface{}, len(d.Sections))
	for i, sec := range d.Sections {
		sections[i] = map[string]interface{}{
			"id":      sec.ID,
			"heading": sec.Heading,
			"content": sec.Content,
			"level":   sec.Level,
		}
	}
	fields["title"] = d.Title
	fields["content"] = d.Content
	fields["sections"] = sections
	fields["generatedAt"] = d.CreatedAt
	return fields
}

func (s *FirestoreStore) Create(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	fields := documentFields(mode, d)
	now := time.Now()
	fields["createdAt"] = now
	fields["updatedAt"] = now
	_, err := s.docRef(id).Create(ctx, fields)
	if status.Code(err) == codes.AlreadyExists {
		return exists(id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*Record, error) {
	snap, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToRecord(snap)
}

func snapshotToRecord(snap *firestore.DocumentSnapshot) (*Record, error) {
	data := snap.Data()
	mode, _ := data["mode"].(string)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	rec := &Record{
		ID:        snap.Ref.ID,
		Mode:      doc.Mode(mode),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if _, ok := data["content"]; !ok {
		return rec, nil
	}

	title, _ := data["title"].(string)
	content, _ := data["content"].(string)
	generatedAt, _ := data["generatedAt"].(time.Time)
	sections, err := decodeSections(snap.Ref.ID, data["sections"])
	if err != nil {
		return nil, err
	}
	rec.Document = &doc.GeneratedDocument{
		Title:     title,
		Content:   content,
		Sections:  sections,
		CreatedAt: generatedAt,
	}
	return rec, nil
}

func decodeSections(id string, raw interface{}) ([]doc.Section, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid sections field in document %s", id)
	}
	sections := make([]doc.Section, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid section %d in document %s", i, id)
		}
		var sec doc.Section
		sec.ID, _ = m["id"].(string)
		sec.Heading, _ = m["heading"].(string)
		sec.Content, _ = m["content"].(string)
		if v, ok := m["level"].(int64); ok {
			sec.Level = int(v)
		}
		sections[i] = sec
	}
	return sections, nil
}

// List returns all records, most recently updated first.
func (s *FirestoreStore) List(ctx context.Context) ([]Record, error) {
	iter := s.client.Collection(s.collection).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var result []Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := snapshotToRecord(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, nil
}

func (s *FirestoreStore) Update(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	fields := documentFields(mode, d)
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, v := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})
	_, err := s.docRef(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return notFound(id)
	}
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	_, err := s.docRef(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return notFound(id)
	}
	return err
}
