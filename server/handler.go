package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
	"github.com/Aditi-179/Docify/editor"
	"github.com/Aditi-179/Docify/store"
)

const requestTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DocumentInfo is the listing entry of a stored document.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Mode      doc.Mode  `json:"mode"`
	Title     string    `json:"title"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade error", zap.Error(err))
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /api/features", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, doc.Features())
	})

	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		if hub.store == nil {
			writeJSON(w, http.StatusOK, []DocumentInfo{})
			return
		}
		recs, err := hub.store.List(r.Context())
		if err != nil {
			hub.logger.Error("list documents", zap.Error(err))
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		infos := make([]DocumentInfo, 0, len(recs))
		for _, rec := range recs {
			info := DocumentInfo{ID: rec.ID, Mode: rec.Mode, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
			if rec.Document != nil {
				info.Title = rec.Document.Title
				info.WordCount = rec.Document.WordCount()
			}
			infos = append(infos, info)
		}
		writeJSON(w, http.StatusOK, infos)
	})

	mux.HandleFunc("GET /api/sessions/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		exp, err := hub.export(r.Context(), r.PathValue("id"))
		if err != nil {
			writeLookupError(w, err)
			return
		}
		w.Header().Set("Content-Type", exp.MediaType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
		w.Write([]byte(exp.Content))
	})

	mux.HandleFunc("GET /api/sessions/{id}/preview", func(w http.ResponseWriter, r *http.Request) {
		html, err := hub.preview(r.Context(), r.PathValue("id"))
		if err != nil {
			writeLookupError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	})

	return mux
}

// export builds the download of a session, falling back to the stored copy
// when the session is not active.
func (h *Hub) export(ctx context.Context, id string) (doc.Export, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if s := h.GetSession(id); s != nil {
		var (
			exp    doc.Export
			expErr error
		)
		if err := s.Do(ctx, func(ed *editor.Session) { exp, expErr = ed.Export() }); err != nil {
			return doc.Export{}, err
		}
		return exp, expErr
	}
	d, err := h.stored(ctx, id)
	if err != nil {
		return doc.Export{}, err
	}
	return doc.NewExport(d), nil
}

// preview renders the display tree of a session as HTML.
func (h *Hub) preview(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if s := h.GetSession(id); s != nil {
		var (
			out    string
			outErr error
		)
		err := s.Do(ctx, func(ed *editor.Session) {
			if ed.Document() == nil {
				outErr = editor.ErrNoDocument
				return
			}
			out = doc.RenderHTML(ed.Render())
		})
		if err != nil {
			return "", err
		}
		return out, outErr
	}
	d, err := h.stored(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.RenderHTML(doc.Encode(d.Content)), nil
}

func (h *Hub) stored(ctx context.Context, id string) (*doc.GeneratedDocument, error) {
	if h.store == nil {
		return nil, store.ErrNotFound
	}
	rec, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Document == nil {
		return nil, editor.ErrNoDocument
	}
	return rec.Document, nil
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, editor.ErrNoDocument):
		http.Error(w, "document not found", http.StatusNotFound)
	default:
		http.Error(w, "failed to load document", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
