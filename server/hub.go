package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
	"github.com/Aditi-179/Docify/editor"
	"github.com/Aditi-179/Docify/generate"
	"github.com/Aditi-179/Docify/store"
)

type joinRequest struct {
	client    *Client
	sessionID string
}

// Hub manages editor sessions and routes clients to the right session.
type Hub struct {
	store    store.DocumentStore
	gen      generate.Generator
	logger   *zap.Logger
	sessions map[string]*Session
	mu       sync.RWMutex

	joinDoc chan joinRequest
}

func NewHub(st store.DocumentStore, gen generate.Generator, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		store:    st,
		gen:      gen,
		logger:   logger,
		sessions: make(map[string]*Session),
		joinDoc:  make(chan joinRequest, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for req := range h.joinDoc {
		h.handleJoinDoc(req)
	}
}

func (h *Hub) handleJoinDoc(req joinRequest) {
	id := req.sessionID
	if id == "" {
		id = uuid.NewString()
	}

	s := h.GetSession(id)
	if s == nil {
		// Loaded without h.mu held.
		ed, err := h.restore(context.Background(), id)
		if err != nil {
			h.logger.Error("hub: failed to load document", zap.String("session", id), zap.Error(err))
			req.client.sendError("failed to load document")
			return
		}
		s = h.addSession(ed)
	}

	select {
	case s.join <- req.client:
	case <-s.stop:
		req.client.sendError("session closed")
	}
}

// addSession starts a session for ed unless one with its ID is already
// running, and returns the running one.
func (h *Hub) addSession(ed *editor.Session) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[ed.ID()]; ok {
		return s
	}
	s := newSession(ed, h.gen, h.store, h.logger)
	h.sessions[ed.ID()] = s
	go s.Run()
	return s
}

// restore builds the editor state for id, resuming a stored document when
// there is one.
func (h *Hub) restore(ctx context.Context, id string) (*editor.Session, error) {
	ed := editor.New(id, editor.WithLogger(h.logger))
	if h.store == nil {
		return ed, nil
	}
	rec, err := h.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ed, nil
	}
	if err != nil {
		return nil, err
	}
	if mode, err := doc.ParseMode(string(rec.Mode)); err == nil {
		ed.SetMode(mode)
	}
	if rec.Document != nil {
		ed.SetDocument(rec.Document)
		ed.Render()
	}
	h.logger.Info("hub: resumed stored document", zap.String("session", id))
	return ed, nil
}

// GetSession returns the session for an ID, if active.
func (h *Hub) GetSession(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

// Close stops every active session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.Close()
		delete(h.sessions, id)
	}
}
