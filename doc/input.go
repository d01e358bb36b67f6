package doc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects a document workflow.
type Mode string

const (
	ModePromptToDoc Mode = "prompt-to-doc"
	ModeTextToDoc   Mode = "text-to-doc"
	ModeDocToDoc    Mode = "doc-to-doc"
	ModeReformatter Mode = "reformatter"
)

// Modes lists every workflow in presentation order.
var Modes = []Mode{ModePromptToDoc, ModeTextToDoc, ModeDocToDoc, ModeReformatter}

// ParseMode validates a mode tag received from a client.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Minimum trimmed lengths, exclusive, for the text based workflows.
const (
	minPromptLen  = 10
	minRawTextLen = 20
)

// File is an uploaded file.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data,omitempty"`
}

// BaseName returns the file name without its extension.
func (f *File) BaseName() string {
	if f == nil {
		return ""
	}
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// FileSlot names one of the file fields of an Input.
type FileSlot string

const (
	SlotUploaded FileSlot = "uploadedFile"
	SlotSource   FileSlot = "sourceFile"
	SlotFormat   FileSlot = "formatFile"
)

// Input collects what the user supplied for the active mode. Only the fields
// belonging to Mode are meaningful.
type Input struct {
	Mode         Mode   `json:"mode"`
	PromptText   string `json:"promptText,omitempty"`
	RawText      string `json:"rawText,omitempty"`
	UploadedFile *File  `json:"uploadedFile,omitempty"`
	SourceFile   *File  `json:"sourceFile,omitempty"`
	FormatFile   *File  `json:"formatFile,omitempty"`
}

// NewInput returns an empty input for mode.
func NewInput(mode Mode) Input {
	return Input{Mode: mode}
}

// WithFile returns a copy of in with the file stored in slot. A nil file
// clears the slot.
func (in Input) WithFile(slot FileSlot, f *File) (Input, error) {
	switch slot {
	case SlotUploaded:
		in.UploadedFile = f
	case SlotSource:
		in.SourceFile = f
	case SlotFormat:
		in.FormatFile = f
	default:
		return in, fmt.Errorf("unknown file slot %q", slot)
	}
	return in, nil
}

// Valid reports whether the input passes the gate of its mode.
func (in Input) Valid() bool {
	switch in.Mode {
	case ModePromptToDoc:
		return runeLen(strings.TrimSpace(in.PromptText)) > minPromptLen
	case ModeTextToDoc:
		return runeLen(strings.TrimSpace(in.RawText)) > minRawTextLen
	case ModeDocToDoc:
		return in.UploadedFile != nil
	case ModeReformatter:
		return in.SourceFile != nil && in.FormatFile != nil
	default:
		return false
	}
}
