package doc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidTree is returned for display trees that are not one block per
// content line.
var ErrInvalidTree = errors.New("invalid document tree")

// Kind tags a display node.
type Kind int

const (
	KindUnknown Kind = iota
	KindParagraph
	KindHeading1
	KindHeading2
	KindListItem
	KindSpacer
	KindQuote
	KindImage
	KindText
	KindSpan
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindParagraph: "paragraph",
	KindHeading1:  "heading1",
	KindHeading2:  "heading2",
	KindListItem:  "listItem",
	KindSpacer:    "spacer",
	KindQuote:     "quote",
	KindImage:     "image",
	KindText:      "text",
	KindSpan:      "span",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// ParseKind maps a kind name to its Kind. Unrecognized names map to
// KindUnknown.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return Kind(k)
		}
	}
	return KindUnknown
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// Inline reports whether nodes of this kind live inside a block.
func (k Kind) Inline() bool {
	return k == KindText || k == KindSpan
}

// Align is the horizontal alignment of a block.
type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Valid reports whether a is one of the known alignments.
func (a Align) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Style is the presentation carried by a span. Zero fields inherit.
type Style struct {
	FontFamily string `json:"fontFamily,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty"`
	Href       string `json:"href,omitempty"`
}

func (s Style) IsZero() bool { return s == Style{} }

// Merge returns s overridden by the non-zero fields of inner.
func (s Style) Merge(inner Style) Style {
	if inner.FontFamily != "" {
		s.FontFamily = inner.FontFamily
	}
	if inner.FontSize != 0 {
		s.FontSize = inner.FontSize
	}
	s.Bold = s.Bold || inner.Bold
	s.Italic = s.Italic || inner.Italic
	s.Underline = s.Underline || inner.Underline
	if inner.Href != "" {
		s.Href = inner.Href
	}
	return s
}

// Node is one element of the rich document tree.
//
// The top level of a tree is a slice of block nodes, one per content line.
// Blocks hold inline children: text leaves and styled spans. A spacer keeps
// the blank line it was encoded from in Text but displays nothing.
//
// Nodes are treated as immutable once they are part of a tree: every
// transformation in this package copies the blocks it changes, so trees may
// share unchanged nodes.
type Node struct {
	Kind     Kind    `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Style    Style   `json:"style,omitzero"`
	Align    Align   `json:"align,omitempty"`
	Src      string  `json:"src,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// TextNode returns a text leaf.
func TextNode(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// NewBlock returns a block of kind holding text.
func NewBlock(kind Kind, text string) *Node {
	n := &Node{Kind: kind}
	if text != "" {
		n.Children = []*Node{TextNode(text)}
	}
	return n
}

// TextContent returns the plain text of n with all structure below it
// flattened.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	switch {
	case n == nil:
	case n.Kind == KindText:
		b.WriteString(n.Text)
	case n.Kind == KindSpacer || n.Kind == KindImage:
		for _, c := range n.Children {
			c.writeText(b)
		}
	case len(n.Children) == 0:
		b.WriteString(n.Text)
	default:
		for _, c := range n.Children {
			c.writeText(b)
		}
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// CloneTree returns a deep copy of a block slice.
func CloneTree(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// ValidateTree checks a tree received from a client. Every top-level node
// must be a block with a known alignment whose text holds no line break.
func ValidateTree(nodes []*Node) error {
	for i, n := range nodes {
		switch {
		case n == nil:
			return fmt.Errorf("%w: block %d is null", ErrInvalidTree, i)
		case n.Kind.Inline():
			return fmt.Errorf("%w: block %d is an inline %s", ErrInvalidTree, i, n.Kind)
		case !n.Align.Valid():
			return fmt.Errorf("%w: block %d has unknown alignment %q", ErrInvalidTree, i, n.Align)
		case strings.Contains(n.Text, "\n") || strings.Contains(n.TextContent(), "\n"):
			return fmt.Errorf("%w: block %d spans several lines", ErrInvalidTree, i)
		}
	}
	return nil
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
