package doc

import (
	"regexp"
	"strings"
)

// MarkdownType is the media type of downloaded documents.
const MarkdownType = "text/markdown; charset=utf-8"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Export is a downloadable copy of a document's content. Styling applied in
// the editor is presentation only and never part of an export.
type Export struct {
	Filename  string
	MediaType string
	Content   []byte
}

// Filename derives a download name from a title: lowercased, with every run
// of whitespace replaced by a single hyphen, and a .md extension.
func Filename(title string) string {
	name := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	if name == "" {
		name = "document"
	}
	return name + ".md"
}

// NewExport returns the download payload of d.
func NewExport(d *GeneratedDocument) Export {
	return Export{
		Filename:  Filename(d.Title),
		MediaType: MarkdownType,
		Content:   []byte(d.Content),
	}
}
