package doc

import (
	"strings"
	"time"
)

// Section is one structured section produced by a generator.
type Section struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// GeneratedDocument is the result of a generation call.
//
// Content is the authoritative, line-oriented body that is displayed, edited
// and exported. Sections is the snapshot taken at generation time; it is not
// kept in sync with edits to Content.
//
// A GeneratedDocument is never mutated after construction. Edits produce a
// new value through WithTitle and WithContent, so holders can detect change
// by pointer comparison.
type GeneratedDocument struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDocument builds a document whose content is rendered from sections.
func NewDocument(title string, sections []Section, createdAt time.Time) *GeneratedDocument {
	return &GeneratedDocument{
		Title:     title,
		Content:   RenderSections(sections),
		Sections:  cloneSections(sections),
		CreatedAt: createdAt,
	}
}

// WithTitle returns a copy of d carrying the new title.
func (d *GeneratedDocument) WithTitle(title string) *GeneratedDocument {
	cp := d.clone()
	cp.Title = title
	return cp
}

// WithContent returns a copy of d carrying the new content.
func (d *GeneratedDocument) WithContent(content string) *GeneratedDocument {
	cp := d.clone()
	cp.Content = content
	return cp
}

// SameIdentity reports whether d and other come from the same generation call.
func (d *GeneratedDocument) SameIdentity(other *GeneratedDocument) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.CreatedAt.Equal(other.CreatedAt)
}

// WordCount counts whitespace separated words in the content.
func (d *GeneratedDocument) WordCount() int {
	if d == nil {
		return 0
	}
	return len(strings.Fields(d.Content))
}

func (d *GeneratedDocument) clone() *GeneratedDocument {
	cp := *d
	cp.Sections = cloneSections(d.Sections)
	return &cp
}

func cloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// RenderSections renders sections as "## heading", a blank line and the
// section body, with sections separated by a blank line.
func RenderSections(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, heading1Prefix+s.Heading+"\n\n"+s.Content)
	}
	return strings.Join(parts, "\n\n")
}
