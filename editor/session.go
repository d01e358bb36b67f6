// Package editor holds the state of one document editing session: the active
// workflow and its input, the current document and its display tree, canvas
// settings and the in-flight generation.
//
// A Session is not safe for concurrent use. It is owned by a single
// goroutine that serializes every event of the session.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
)

var (
	ErrInvalidInput  = errors.New("input is not complete for the selected mode")
	ErrGenerating    = errors.New("generation already in progress")
	ErrStaleResult   = errors.New("result belongs to an abandoned document")
	ErrNoDocument    = errors.New("no document")
	ErrNotReady      = errors.New("document is not rendered yet")
	ErrPagesLocked   = errors.New("page count is derived from content in reformatter mode")
	ErrEmptySelected = errors.New("select some text first")
	ErrEdited        = errors.New("document was edited during regeneration")
)

// historyLimit bounds the undo stack.
const historyLimit = 50

// State is the display state of the session's document.
type State int

const (
	StateEmpty State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = StateEmpty
	case "initializing":
		*s = StateInitializing
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

// Ticket binds an asynchronous request to the document epoch it was issued
// in. Results carrying an old epoch are discarded. Rev is the display tree
// revision, checked by requests that address the tree by selection.
type Ticket struct {
	Epoch uint64
	Rev   uint64
	Input doc.Input
}

// Session is the editing state of one user session.
type Session struct {
	id       string
	mode     doc.Mode
	input    doc.Input
	document *doc.GeneratedDocument
	settings doc.EditorSettings

	state       State
	nodes       []*doc.Node
	rev         uint64
	hasRendered bool
	renderedAt  time.Time
	selection   *doc.Selection

	lastSaved    time.Time
	generating   bool
	regenerating bool
	epoch        uint64

	undo [][]*doc.Node
	redo [][]*doc.Node

	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Session)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty session in prompt-to-doc mode.
func New(id string, opts ...Option) *Session {
	s := &Session{
		id:       id,
		mode:     doc.ModePromptToDoc,
		input:    doc.NewInput(doc.ModePromptToDoc),
		settings: doc.DefaultSettings(),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", id))
	s.lastSaved = s.now()
	return s
}

func (s *Session) ID() string                       { return s.id }
func (s *Session) Mode() doc.Mode                   { return s.mode }
func (s *Session) Input() doc.Input                 { return s.input }
func (s *Session) Document() *doc.GeneratedDocument { return s.document }
func (s *Session) Settings() doc.EditorSettings     { return s.settings }
func (s *Session) State() State                     { return s.state }
func (s *Session) Generating() bool                 { return s.generating }
func (s *Session) Regenerating() bool               { return s.regenerating }
func (s *Session) LastSaved() time.Time             { return s.lastSaved }
func (s *Session) Selection() *doc.Selection        { return s.selection }

// Nodes returns the current display tree. Callers must not modify it.
func (s *Session) Nodes() []*doc.Node { return s.nodes }

// CanGenerate reports whether a generate request would be accepted.
func (s *Session) CanGenerate() bool {
	return !s.generating && s.input.Valid()
}

// WordCount counts the words of the current content.
func (s *Session) WordCount() int { return s.document.WordCount() }

// LastSavedLabel renders the last save time relative to now.
func (s *Session) LastSavedLabel() string {
	return TimeAgo(s.lastSaved, s.now())
}

// SetMode switches workflow. The input is reset to the new mode and the
// current document is discarded.
func (s *Session) SetMode(mode doc.Mode) {
	s.mode = mode
	s.input = doc.NewInput(mode)
	s.epoch++
	s.SetDocument(nil)
}

func (s *Session) SetPrompt(text string) { s.input.PromptText = text }

func (s *Session) SetRawText(text string) { s.input.RawText = text }

// SetFile stores f in slot; nil clears it.
func (s *Session) SetFile(slot doc.FileSlot, f *doc.File) error {
	in, err := s.input.WithFile(slot, f)
	if err != nil {
		return err
	}
	s.input = in
	return nil
}

// ResetInput clears every input field and keeps the mode.
func (s *Session) ResetInput() {
	s.input = doc.NewInput(s.mode)
}

// NewDocument discards the document and the input so the user can start
// over. A generation still in flight will be discarded when it completes.
func (s *Session) NewDocument() {
	s.epoch++
	s.SetDocument(nil)
	s.ResetInput()
}

// SetDocument replaces the current document. The display tree is rebuilt on
// the next Render only when d comes from another generation call than the
// one last rendered; this keeps unsaved edits across replacements of the same
// document.
func (s *Session) SetDocument(d *doc.GeneratedDocument) {
	s.document = d
	if d == nil {
		s.state = StateEmpty
		s.nodes = nil
		s.rev++
		s.selection = nil
		s.hasRendered = false
		s.clearHistory()
		return
	}
	if !s.hasRendered || !d.CreatedAt.Equal(s.renderedAt) {
		s.state = StateInitializing
	}
}

// Render populates the display tree for the current document if it has not
// been rendered yet and returns it.
func (s *Session) Render() []*doc.Node {
	if s.state != StateInitializing {
		return s.nodes
	}
	s.nodes = doc.Encode(s.document.Content)
	s.rev++
	s.renderedAt = s.document.CreatedAt
	s.hasRendered = true
	s.selection = nil
	s.clearHistory()
	s.state = StateReady
	s.logger.Debug("document rendered", zap.Int("blocks", len(s.nodes)))
	return s.nodes
}

// CommitTitle stores an edited title. It reports whether the title changed.
func (s *Session) CommitTitle(title string) (bool, error) {
	if s.document == nil {
		return false, ErrNoDocument
	}
	title = strings.TrimSpace(title)
	if title == s.document.Title {
		return false, nil
	}
	s.document = s.document.WithTitle(title)
	s.lastSaved = s.now()
	return true, nil
}

// CommitContent derives the flat content from the display tree and stores it
// when it changed. Blocks without a line form are reduced to their text and
// logged.
func (s *Session) CommitContent() (bool, error) {
	if s.document == nil {
		return false, ErrNoDocument
	}
	if s.state != StateReady {
		return false, ErrNotReady
	}
	content, degraded := doc.DecodeReport(s.nodes)
	if len(degraded) > 0 {
		s.logger.Warn("content decoded with plain text fallback", zap.Ints("blocks", degraded))
	}
	if content == s.document.Content {
		return false, nil
	}
	s.document = s.document.WithContent(content)
	s.lastSaved = s.now()
	return true, nil
}

// Edit replaces the display tree with one edited by the user. The content is
// not updated until CommitContent. Trees that are not one block per line are
// rejected.
func (s *Session) Edit(nodes []*doc.Node) error {
	if s.state != StateReady {
		return ErrNotReady
	}
	if err := doc.ValidateTree(nodes); err != nil {
		return err
	}
	s.pushHistory()
	s.nodes = nodes
	return nil
}

// EffectivePageCount is the page count shown on the canvas. In reformatter
// mode it is derived from the content length.
func (s *Session) EffectivePageCount() int {
	if s.PagesLocked() {
		if s.document == nil {
			return doc.MinPages
		}
		return doc.PagesForContent(s.document.Content)
	}
	return s.settings.PageCount
}

// PagesLocked reports whether the user may not change the page count.
func (s *Session) PagesLocked() bool { return s.mode == doc.ModeReformatter }

// AdjustPages moves the page count by delta within [1, 20].
func (s *Session) AdjustPages(delta int) error {
	return s.SetPages(s.settings.PageCount + delta)
}

// SetPages sets the page count, clamped to [1, 20].
func (s *Session) SetPages(n int) error {
	if s.PagesLocked() {
		return ErrPagesLocked
	}
	s.settings.PageCount = doc.ClampPages(n)
	return nil
}

// Export returns the download payload of the current document.
func (s *Session) Export() (doc.Export, error) {
	if s.document == nil {
		return doc.Export{}, ErrNoDocument
	}
	return doc.NewExport(s.document), nil
}

// BeginGenerate marks a generation as in flight and returns its ticket.
func (s *Session) BeginGenerate() (Ticket, error) {
	if s.generating {
		return Ticket{}, ErrGenerating
	}
	if !s.input.Valid() {
		return Ticket{}, fmt.Errorf("%w: %s", ErrInvalidInput, s.mode)
	}
	s.generating = true
	return Ticket{Epoch: s.epoch, Input: s.input}, nil
}

// CompleteGenerate records the outcome of the generation issued with t. The
// generating flag is always cleared. On failure, or when the session moved
// on since t was issued, the current state is left untouched.
func (s *Session) CompleteGenerate(t Ticket, d *doc.GeneratedDocument, genErr error) error {
	s.generating = false
	if t.Epoch != s.epoch {
		s.logger.Info("discarding stale generation result", zap.Uint64("epoch", t.Epoch), zap.Uint64("current", s.epoch))
		return ErrStaleResult
	}
	if genErr != nil {
		s.logger.Warn("generation failed", zap.String("mode", string(t.Input.Mode)), zap.Error(genErr))
		return fmt.Errorf("generate: %w", genErr)
	}
	if d == nil {
		return fmt.Errorf("generate: empty result")
	}
	s.SetDocument(d)
	s.lastSaved = s.now()
	return nil
}

// pushHistory records the tree before a change to it.
func (s *Session) pushHistory() {
	s.rev++
	s.undo = append(s.undo, s.nodes)
	if len(s.undo) > historyLimit {
		s.undo = s.undo[len(s.undo)-historyLimit:]
	}
	s.redo = nil
}

func (s *Session) clearHistory() {
	s.undo = nil
	s.redo = nil
}

// Undo restores the display tree before the last edit.
func (s *Session) Undo() bool {
	if s.state != StateReady || len(s.undo) == 0 {
		return false
	}
	last := len(s.undo) - 1
	s.redo = append(s.redo, s.nodes)
	s.nodes = s.undo[last]
	s.rev++
	s.undo = s.undo[:last]
	s.selection = nil
	return true
}

// Redo reapplies the last undone edit.
func (s *Session) Redo() bool {
	if s.state != StateReady || len(s.redo) == 0 {
		return false
	}
	last := len(s.redo) - 1
	s.undo = append(s.undo, s.nodes)
	s.nodes = s.redo[last]
	s.rev++
	s.redo = s.redo[:last]
	s.selection = nil
	return true
}
