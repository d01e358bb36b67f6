package editor

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
)

// ApplyStyle applies a font family or size. With a non-collapsed selection
// only the selected text is restyled; otherwise the value becomes the
// session default and existing content is left alone.
func (s *Session) ApplyStyle(sel *doc.Selection, prop doc.StyleProp, value string) error {
	style, err := doc.ParseStyle(prop, value)
	if err != nil {
		return err
	}
	if sel == nil || sel.Collapsed() {
		if style.FontFamily != "" {
			s.settings.FontFamily = style.FontFamily
		}
		if style.FontSize != 0 {
			s.settings.FontSize = style.FontSize
		}
		return nil
	}
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, next, err := doc.ApplyStyle(nodes, *sel, prop, value)
		return out, &next, err
	})
}

// ApplyMark toggles bold, italic or underline over the selection.
func (s *Session) ApplyMark(sel doc.Selection, mark doc.Mark) error {
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, next, err := doc.ApplyMark(nodes, sel, mark)
		return out, &next, err
	})
}

// ApplyLink links the selected text to href.
func (s *Session) ApplyLink(sel doc.Selection, href string) error {
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, next, err := doc.ApplyLink(nodes, sel, href)
		return out, &next, err
	})
}

// SetBlockKind turns the selected blocks into headings, list items,
// paragraphs or quotes.
func (s *Session) SetBlockKind(sel doc.Selection, kind doc.Kind) error {
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, err := doc.SetBlockKind(nodes, sel, kind)
		return out, &sel, err
	})
}

func (s *Session) SetAlign(sel doc.Selection, align doc.Align) error {
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, err := doc.SetAlign(nodes, sel, align)
		return out, &sel, err
	})
}

func (s *Session) InsertImage(sel doc.Selection, src string) error {
	return s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, err := doc.InsertImage(nodes, sel, src)
		return out, nil, err
	})
}

// ReplaceSelection replaces the selected text and commits the content.
func (s *Session) ReplaceSelection(sel doc.Selection, text string) error {
	err := s.transform(func(nodes []*doc.Node) ([]*doc.Node, *doc.Selection, error) {
		out, next, err := doc.ReplaceSelection(nodes, sel, text)
		return out, &next, err
	})
	if err != nil {
		return err
	}
	_, err = s.CommitContent()
	return err
}

func (s *Session) transform(fn func([]*doc.Node) ([]*doc.Node, *doc.Selection, error)) error {
	if s.state != StateReady {
		return ErrNotReady
	}
	out, next, err := fn(s.nodes)
	if err != nil {
		return err
	}
	s.pushHistory()
	s.nodes = out
	s.selection = next
	return nil
}

// BeginRegenerate returns the trimmed text under sel, to be rewritten by the
// generator, and marks a regeneration as in flight.
func (s *Session) BeginRegenerate(sel doc.Selection) (Ticket, string, error) {
	if s.state != StateReady {
		return Ticket{}, "", ErrNotReady
	}
	if s.regenerating {
		return Ticket{}, "", ErrGenerating
	}
	text, err := doc.SelectedText(s.nodes, sel)
	if err != nil {
		return Ticket{}, "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Ticket{}, "", ErrEmptySelected
	}
	s.regenerating = true
	return Ticket{Epoch: s.epoch, Rev: s.rev, Input: s.input}, text, nil
}

// CompleteRegenerate replaces sel with the regenerated text when the ticket
// is still current. If the tree changed since BeginRegenerate the selection
// no longer addresses the original text and ErrEdited is returned.
func (s *Session) CompleteRegenerate(t Ticket, sel doc.Selection, text string, genErr error) error {
	s.regenerating = false
	if t.Epoch != s.epoch {
		return ErrStaleResult
	}
	if genErr != nil {
		s.logger.Warn("regeneration failed", zap.Error(genErr))
		return fmt.Errorf("regenerate: %w", genErr)
	}
	if t.Rev != s.rev {
		return ErrEdited
	}
	return s.ReplaceSelection(sel, text)
}
