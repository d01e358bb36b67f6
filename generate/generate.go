// Package generate produces documents from user input.
package generate

import (
	"context"
	"unicode/utf8"

	"github.com/Aditi-179/Docify/doc"
)

// Generator turns user input into a document.
type Generator interface {
	// Generate builds a document for in. It must return either a complete
	// document or an error, never a partial document.
	Generate(ctx context.Context, in doc.Input) (*doc.GeneratedDocument, error)
	// Regenerate rewrites a selected passage.
	Regenerate(ctx context.Context, text string) (string, error)
}

const titleLimit = 50

// Title derives the document title for in.
func Title(in doc.Input) string {
	switch in.Mode {
	case doc.ModePromptToDoc:
		if in.PromptText == "" {
			return "Generated Document"
		}
		return truncate(in.PromptText, titleLimit) + "..."
	case doc.ModeTextToDoc:
		return "Structured Document"
	case doc.ModeDocToDoc:
		if name := in.UploadedFile.BaseName(); name != "" {
			return name
		}
		return "Extracted Document"
	case doc.ModeReformatter:
		return "Reformatted Document"
	default:
		return "New Document"
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
