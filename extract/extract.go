// Package extract turns uploaded files into text the generators can work
// with.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	rpdf "rsc.io/pdf"

	"github.com/Aditi-179/Docify/doc"
)

var ErrUnsupported = errors.New("unsupported file type")

// Format is the detected type of an uploaded file.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatMarkdown    Format = "markdown"
	FormatText        Format = "text"
	FormatUnsupported Format = "unsupported"
)

// Detect classifies f by extension first and sniffed content second.
func Detect(f *doc.File) Format {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".pdf":
		return FormatPDF
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatText
	}
	mt := mimetype.Detect(f.Data)
	switch {
	case mt.Is("application/pdf"):
		return FormatPDF
	case mt.Is("text/markdown"):
		return FormatMarkdown
	case strings.HasPrefix(mt.String(), "text/"):
		return FormatText
	default:
		return FormatUnsupported
	}
}

// Text returns the plain text of f.
func Text(f *doc.File) (string, error) {
	if f == nil {
		return "", fmt.Errorf("no file")
	}
	switch Detect(f) {
	case FormatPDF:
		text, err := pdfText(f.Data)
		if err != nil {
			return "", fmt.Errorf("read pdf %q: %w", f.Name, err)
		}
		return text, nil
	case FormatMarkdown, FormatText:
		return string(f.Data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, f.Name)
	}
}

// pdfText concatenates the text runs of every page, one page per paragraph.
// The pdf reader panics on some malformed input; that is reported as an
// error.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		var b strings.Builder
		for _, t := range p.Content().Text {
			b.WriteString(t.S)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			pages = append(pages, s)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
