package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Aditi-179/Docify/doc"
)

// documentRow is the SQL row of a Record.
type documentRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Mode        string `gorm:"size:32"`
	HasDocument bool
	Title       string
	Content     string        `gorm:"type:text"`
	Sections    []doc.Section `gorm:"serializer:json"`
	GeneratedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`
}

func (documentRow) TableName() string { return "documents" }

func (r *documentRow) set(mode doc.Mode, d *doc.GeneratedDocument) {
	r.Mode = string(mode)
	r.HasDocument = d != nil
	if d == nil {
		r.Title, r.Content, r.Sections, r.GeneratedAt = "", "", nil, time.Time{}
		return
	}
	r.Title = d.Title
	r.Content = d.Content
	r.Sections = d.Sections
	r.GeneratedAt = d.CreatedAt
}

func (r *documentRow) record() Record {
	rec := Record{
		ID:        r.ID,
		Mode:      doc.Mode(r.Mode),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.HasDocument {
		rec.Document = &doc.GeneratedDocument{
			Title:     r.Title,
			Content:   r.Content,
			Sections:  r.Sections,
			CreatedAt: r.GeneratedAt,
		}
	}
	return rec
}

// SQLStore is a gorm-backed implementation of DocumentStore.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the documents table and returns a store over db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) find(ctx context.Context, id string) (*documentRow, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *SQLStore) Create(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	if _, err := s.find(ctx, id); err == nil {
		return exists(id)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	row := documentRow{ID: id}
	row.set(mode, d)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Record, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := row.record()
	return &rec, nil
}

// List returns all records, most recently updated first.
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).Order("updated_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]Record, len(rows))
	for i := range rows {
		result[i] = rows[i].record()
	}
	return result, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, mode doc.Mode, d *doc.GeneratedDocument) error {
	row, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	row.set(mode, d)
	return s.db.WithContext(ctx).Save(row).Error
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&documentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}
