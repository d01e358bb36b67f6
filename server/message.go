package server

import (
	"encoding/json"

	"github.com/Aditi-179/Docify/doc"
	"github.com/Aditi-179/Docify/editor"
)

// Message types exchanged over WebSocket.
const (
	MsgJoin       = "join"
	MsgMode       = "mode"
	MsgInput      = "input"
	MsgGenerate   = "generate"
	MsgTitle      = "title"
	MsgContent    = "content"
	MsgStyle      = "style"
	MsgMark       = "mark"
	MsgLink       = "link"
	MsgBlock      = "block"
	MsgAlign      = "align"
	MsgImage      = "image"
	MsgReplace    = "replace"
	MsgRegenerate = "regenerate"
	MsgPages      = "pages"
	MsgUndo       = "undo"
	MsgRedo       = "redo"
	MsgNew        = "new"

	MsgState  = "state"
	MsgNotice = "notice"
	MsgError  = "error"
)

// Input fields addressed by an input message besides the file slots.
const (
	FieldPrompt  = "promptText"
	FieldRawText = "rawText"
	FieldReset   = "reset"
)

// ClientMessage is a message from client to server. Which fields are read
// depends on Type.
type ClientMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Field     string         `json:"field,omitempty"`
	Text      string         `json:"text,omitempty"`
	File      *doc.File      `json:"file,omitempty"`
	Nodes     []*doc.Node    `json:"nodes,omitempty"`
	Selection *doc.Selection `json:"selection,omitempty"`
	Prop      string         `json:"prop,omitempty"`
	Value     string         `json:"value,omitempty"`
	Pages     int            `json:"pages,omitempty"`
	Delta     int            `json:"delta,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	ClientID  string    `json:"clientId,omitempty"`
	Message   string    `json:"message,omitempty"`
	State     *Snapshot `json:"state,omitempty"`
}

// Snapshot is the full editor state pushed to clients after every change.
type Snapshot struct {
	Mode         doc.Mode               `json:"mode"`
	Input        InputSummary           `json:"input"`
	State        editor.State           `json:"state"`
	Document     *doc.GeneratedDocument `json:"document"`
	Nodes        []*doc.Node            `json:"nodes"`
	Settings     doc.EditorSettings     `json:"settings"`
	PageCount    int                    `json:"pageCount"`
	PagesLocked  bool                   `json:"pagesLocked"`
	LastSaved    string                 `json:"lastSaved"`
	Generating   bool                   `json:"generating"`
	Regenerating bool                   `json:"regenerating"`
	CanGenerate  bool                   `json:"canGenerate"`
	WordCount    int                    `json:"wordCount"`
	Selection    *doc.Selection         `json:"selection,omitempty"`
	Clients      []ClientInfo           `json:"clients"`
}

// InputSummary echoes the input without file contents.
type InputSummary struct {
	PromptText   string `json:"promptText,omitempty"`
	RawText      string `json:"rawText,omitempty"`
	UploadedFile string `json:"uploadedFile,omitempty"`
	SourceFile   string `json:"sourceFile,omitempty"`
	FormatFile   string `json:"formatFile,omitempty"`
}

func summarize(in doc.Input) InputSummary {
	name := func(f *doc.File) string {
		if f == nil {
			return ""
		}
		return f.Name
	}
	return InputSummary{
		PromptText:   in.PromptText,
		RawText:      in.RawText,
		UploadedFile: name(in.UploadedFile),
		SourceFile:   name(in.SourceFile),
		FormatFile:   name(in.FormatFile),
	}
}

func snapshot(ed *editor.Session, clients []ClientInfo) *Snapshot {
	return &Snapshot{
		Mode:         ed.Mode(),
		Input:        summarize(ed.Input()),
		State:        ed.State(),
		Document:     ed.Document(),
		Nodes:        ed.Nodes(),
		Settings:     ed.Settings(),
		PageCount:    ed.EffectivePageCount(),
		PagesLocked:  ed.PagesLocked(),
		LastSaved:    ed.LastSavedLabel(),
		Generating:   ed.Generating(),
		Regenerating: ed.Regenerating(),
		CanGenerate:  ed.CanGenerate(),
		WordCount:    ed.WordCount(),
		Selection:    ed.Selection(),
		Clients:      clients,
	}
}

// ClientInfo describes a connected user.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
