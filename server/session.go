package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
	"github.com/Aditi-179/Docify/editor"
	"github.com/Aditi-179/Docify/generate"
	"github.com/Aditi-179/Docify/store"
)

const storeTimeout = 10 * time.Second

var errNoSelection = errors.New("selection required")

type incomingMessage struct {
	client *Client
	msg    ClientMessage
}

type generateResult struct {
	ticket editor.Ticket
	doc    *doc.GeneratedDocument
	err    error
}

type regenerateResult struct {
	ticket editor.Ticket
	sel    doc.Selection
	text   string
	err    error
}

type query struct {
	fn   func(*editor.Session)
	done chan struct{}
}

// Session hosts the editor state of one document session.
// All events are serialized through a single goroutine; generator calls run
// in their own goroutines and post their results back.
type Session struct {
	id      string
	ed      *editor.Session
	gen     generate.Generator
	store   store.DocumentStore
	logger  *zap.Logger
	clients map[*Client]bool
	saved   *doc.GeneratedDocument

	incoming    chan incomingMessage
	join        chan *Client
	leave       chan *Client
	generated   chan generateResult
	regenerated chan regenerateResult
	queries     chan query

	ctx      context.Context
	cancel   context.CancelFunc
	stop     chan struct{}
	stopOnce sync.Once
}

func newSession(ed *editor.Session, gen generate.Generator, st store.DocumentStore, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:          ed.ID(),
		ed:          ed,
		gen:         gen,
		store:       st,
		logger:      logger.With(zap.String("session", ed.ID())),
		clients:     make(map[*Client]bool),
		saved:       ed.Document(),
		incoming:    make(chan incomingMessage, 64),
		join:        make(chan *Client, 16),
		leave:       make(chan *Client, 16),
		generated:   make(chan generateResult, 4),
		regenerated: make(chan regenerateResult, 4),
		queries:     make(chan query),
		ctx:         ctx,
		cancel:      cancel,
		stop:        make(chan struct{}),
	}
}

// Run is the session's main loop. It serializes all events.
func (s *Session) Run() {
	defer s.cancel()
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case im := <-s.incoming:
			s.handleMessage(im)
		case r := <-s.generated:
			s.handleGenerated(r)
		case r := <-s.regenerated:
			s.handleRegenerated(r)
		case q := <-s.queries:
			q.fn(s.ed)
			close(q.done)
		case <-s.stop:
			return
		}
	}
}

// Close stops the session loop and cancels in-flight generator calls.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Do runs fn on the session goroutine and waits for it to return.
func (s *Session) Do(ctx context.Context, fn func(*editor.Session)) error {
	q := query{fn: fn, done: make(chan struct{})}
	select {
	case s.queries <- q:
	case <-s.stop:
		return errors.New("session closed")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	s.settle()
	s.broadcast()
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	close(c.send)

	s.broadcast()
}

func (s *Session) handleMessage(im incomingMessage) {
	if !s.clients[im.client] {
		// Queued before the client left; its send channel is closed.
		s.logger.Debug("message from departed client dropped", zap.String("type", im.msg.Type), zap.String("client", im.client.ID))
		return
	}
	if err := s.apply(im.msg); err != nil {
		s.logger.Debug("message rejected", zap.String("type", im.msg.Type), zap.String("client", im.client.ID), zap.Error(err))
		im.client.sendError(err.Error())
		return
	}
	s.settle()
	s.broadcast()
}

// apply dispatches one client message to the editor.
func (s *Session) apply(msg ClientMessage) error {
	ed := s.ed
	switch msg.Type {
	case MsgMode:
		mode, err := doc.ParseMode(msg.Mode)
		if err != nil {
			return err
		}
		ed.SetMode(mode)
	case MsgInput:
		switch msg.Field {
		case FieldPrompt:
			ed.SetPrompt(msg.Text)
		case FieldRawText:
			ed.SetRawText(msg.Text)
		case FieldReset:
			ed.ResetInput()
		default:
			return ed.SetFile(doc.FileSlot(msg.Field), msg.File)
		}
	case MsgGenerate:
		t, err := ed.BeginGenerate()
		if err != nil {
			return err
		}
		go s.generate(t)
	case MsgTitle:
		_, err := ed.CommitTitle(msg.Text)
		return err
	case MsgContent:
		return ed.Edit(msg.Nodes)
	case MsgStyle:
		return ed.ApplyStyle(msg.Selection, doc.StyleProp(msg.Prop), msg.Value)
	case MsgMark:
		mark := doc.Mark(msg.Value)
		switch mark {
		case doc.MarkBold, doc.MarkItalic, doc.MarkUnderline:
		default:
			return fmt.Errorf("unknown mark %q", msg.Value)
		}
		return withSelection(msg, func(sel doc.Selection) error { return ed.ApplyMark(sel, mark) })
	case MsgLink:
		return withSelection(msg, func(sel doc.Selection) error { return ed.ApplyLink(sel, msg.Value) })
	case MsgBlock:
		return withSelection(msg, func(sel doc.Selection) error { return ed.SetBlockKind(sel, doc.ParseKind(msg.Value)) })
	case MsgAlign:
		return withSelection(msg, func(sel doc.Selection) error { return ed.SetAlign(sel, doc.Align(msg.Value)) })
	case MsgImage:
		return withSelection(msg, func(sel doc.Selection) error { return ed.InsertImage(sel, msg.Value) })
	case MsgReplace:
		return withSelection(msg, func(sel doc.Selection) error { return ed.ReplaceSelection(sel, msg.Text) })
	case MsgRegenerate:
		return withSelection(msg, func(sel doc.Selection) error {
			t, text, err := ed.BeginRegenerate(sel)
			if err != nil {
				return err
			}
			go s.regenerate(t, sel, text)
			return nil
		})
	case MsgPages:
		if msg.Delta != 0 {
			return ed.AdjustPages(msg.Delta)
		}
		return ed.SetPages(msg.Pages)
	case MsgUndo:
		ed.Undo()
	case MsgRedo:
		ed.Redo()
	case MsgNew:
		ed.NewDocument()
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

func withSelection(msg ClientMessage, fn func(doc.Selection) error) error {
	if msg.Selection == nil {
		return errNoSelection
	}
	return fn(*msg.Selection)
}

func (s *Session) generate(t editor.Ticket) {
	d, err := s.gen.Generate(s.ctx, t.Input)
	select {
	case s.generated <- generateResult{ticket: t, doc: d, err: err}:
	case <-s.stop:
	}
}

func (s *Session) regenerate(t editor.Ticket, sel doc.Selection, text string) {
	out, err := s.gen.Regenerate(s.ctx, text)
	select {
	case s.regenerated <- regenerateResult{ticket: t, sel: sel, text: out, err: err}:
	case <-s.stop:
	}
}

func (s *Session) handleGenerated(r generateResult) {
	err := s.ed.CompleteGenerate(r.ticket, r.doc, r.err)
	switch {
	case errors.Is(err, editor.ErrStaleResult):
	case err != nil:
		s.notice("Failed to generate document. Please try again.")
	}
	s.settle()
	s.broadcast()
}

func (s *Session) handleRegenerated(r regenerateResult) {
	err := s.ed.CompleteRegenerate(r.ticket, r.sel, r.text, r.err)
	switch {
	case errors.Is(err, editor.ErrStaleResult):
	case errors.Is(err, editor.ErrEdited):
		s.notice("Content changed during regeneration. Please try again.")
	case err != nil:
		s.logger.Warn("regenerate failed", zap.Error(err))
		s.notice("Failed to regenerate content")
	default:
		s.notice("Content regenerated successfully")
	}
	s.settle()
	s.broadcast()
}

// settle renders a pending document, commits the display tree and saves the
// document when it changed.
func (s *Session) settle() {
	s.ed.Render()
	if s.ed.State() == editor.StateReady {
		if _, err := s.ed.CommitContent(); err != nil {
			s.logger.Warn("commit failed", zap.Error(err))
		}
	}
	s.persist()
}

func (s *Session) persist() {
	d := s.ed.Document()
	if s.store == nil || d == nil || d == s.saved {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, storeTimeout)
	defer cancel()
	if err := store.Save(ctx, s.store, s.id, s.ed.Mode(), d); err != nil {
		s.logger.Error("save failed", zap.Error(err))
		return
	}
	s.saved = d
}

func (s *Session) broadcast() {
	msg := ServerMessage{
		Type:      MsgState,
		SessionID: s.id,
		State:     snapshot(s.ed, s.clientInfos()),
	}
	data := msg.Encode()
	for c := range s.clients {
		c.sendRaw(data)
	}
}

func (s *Session) notice(text string) {
	data := ServerMessage{Type: MsgNotice, SessionID: s.id, Message: text}.Encode()
	for c := range s.clients {
		c.sendRaw(data)
	}
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
