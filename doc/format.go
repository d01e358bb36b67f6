package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// StyleProp names a style that ApplyStyle can set.
type StyleProp string

const (
	PropFontFamily StyleProp = "fontFamily"
	PropFontSize   StyleProp = "fontSize"
)

// ParseStyle builds the style for prop from its wire value. Font sizes may
// carry a "px" suffix.
func ParseStyle(prop StyleProp, value string) (Style, error) {
	value = strings.TrimSpace(value)
	switch prop {
	case PropFontFamily:
		if value == "" {
			return Style{}, fmt.Errorf("empty font family")
		}
		return Style{FontFamily: value}, nil
	case PropFontSize:
		px, err := strconv.Atoi(strings.TrimSuffix(value, "px"))
		if err != nil || px <= 0 {
			return Style{}, fmt.Errorf("invalid font size %q", value)
		}
		return Style{FontSize: px}, nil
	default:
		return Style{}, fmt.Errorf("unknown style property %q", prop)
	}
}

// Mark is an inline emphasis toggled by ApplyMark.
type Mark string

const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
)

func (m Mark) has(s Style) bool {
	switch m {
	case MarkBold:
		return s.Bold
	case MarkItalic:
		return s.Italic
	case MarkUnderline:
		return s.Underline
	}
	return false
}

func (m Mark) set(s Style, on bool) Style {
	switch m {
	case MarkBold:
		s.Bold = on
	case MarkItalic:
		s.Italic = on
	case MarkUnderline:
		s.Underline = on
	}
	return s
}

// ApplyStyle wraps the selected text of every block in one new span carrying
// only prop=value. Spans previously applied inside the selection are
// removed; parts of them outside the selection keep their style. Block kinds
// are left untouched, so the decoded content is unchanged.
//
// A selection crossing blocks gets one span per block. The returned
// selection covers the restyled text.
func ApplyStyle(nodes []*Node, sel Selection, prop StyleProp, value string) ([]*Node, Selection, error) {
	style, err := ParseStyle(prop, value)
	if err != nil {
		return nodes, sel, err
	}
	return transformInline(nodes, sel, func(inside []run) []run {
		return []run{{text: concat(inside), style: style}}
	})
}

// ApplyMark toggles a mark over the selection: it is removed when every
// selected run already carries it and added otherwise. Other styles are kept.
func ApplyMark(nodes []*Node, sel Selection, mark Mark) ([]*Node, Selection, error) {
	switch mark {
	case MarkBold, MarkItalic, MarkUnderline:
	default:
		return nodes, sel, fmt.Errorf("unknown mark %q", mark)
	}
	return transformInline(nodes, sel, func(inside []run) []run {
		all := true
		for _, r := range inside {
			all = all && mark.has(r.style)
		}
		out := make([]run, len(inside))
		for i, r := range inside {
			out[i] = run{text: r.text, style: mark.set(r.style, !all)}
		}
		return out
	})
}

// ApplyLink points the selected text at href.
func ApplyLink(nodes []*Node, sel Selection, href string) ([]*Node, Selection, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nodes, sel, fmt.Errorf("empty link target")
	}
	if !safeURL(href, linkSchemes) {
		return nodes, sel, fmt.Errorf("unsupported link target %q", href)
	}
	return transformInline(nodes, sel, func(inside []run) []run {
		out := make([]run, len(inside))
		for i, r := range inside {
			r.style.Href = href
			out[i] = r
		}
		return out
	})
}

func transformInline(nodes []*Node, sel Selection, fn func([]run) []run) ([]*Node, Selection, error) {
	if sel.Collapsed() {
		return nodes, sel, ErrCollapsedSelection
	}
	sel, err := sel.resolve(nodes)
	if err != nil {
		return nodes, sel, err
	}
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	for i := sel.Start.Block; i <= sel.End.Block; i++ {
		block := nodes[i]
		if block.Kind == KindSpacer || block.Kind == KindImage {
			continue
		}
		runs := flatten(block)
		from, to := 0, runeLen(concat(runs))
		if i == sel.Start.Block {
			from = sel.Start.Offset
		}
		if i == sel.End.Block {
			to = sel.End.Offset
		}
		if from >= to {
			continue
		}
		before, inside, after := splitRuns(runs, from, to)
		rebuilt := append(append(before, fn(inside)...), after...)
		cp := *block
		cp.Text = ""
		cp.Children = inlineNodes(rebuilt)
		out[i] = &cp
	}
	return out, sel, nil
}

// SetBlockKind converts every block touched by the selection to kind. A
// collapsed selection converts the block holding the caret.
func SetBlockKind(nodes []*Node, sel Selection, kind Kind) ([]*Node, error) {
	switch kind {
	case KindParagraph, KindHeading1, KindHeading2, KindListItem, KindQuote:
	default:
		return nodes, fmt.Errorf("cannot convert blocks to %s", kind)
	}
	return mapBlocks(nodes, sel, func(n *Node) {
		if n.Kind == KindSpacer {
			n.Text = ""
		}
		n.Kind = kind
	})
}

// SetAlign aligns every block touched by the selection.
func SetAlign(nodes []*Node, sel Selection, align Align) ([]*Node, error) {
	if !align.Valid() {
		return nodes, fmt.Errorf("unknown alignment %q", align)
	}
	return mapBlocks(nodes, sel, func(n *Node) { n.Align = align })
}

func mapBlocks(nodes []*Node, sel Selection, fn func(*Node)) ([]*Node, error) {
	sel, err := sel.resolve(nodes)
	if err != nil {
		return nodes, err
	}
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	for i := sel.Start.Block; i <= sel.End.Block; i++ {
		cp := *nodes[i]
		fn(&cp)
		out[i] = &cp
	}
	return out, nil
}

// InsertImage adds an image block after the block holding the selection end.
func InsertImage(nodes []*Node, sel Selection, src string) ([]*Node, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nodes, fmt.Errorf("empty image source")
	}
	if !safeURL(src, imageSchemes) {
		return nodes, fmt.Errorf("unsupported image source %q", src)
	}
	sel, err := sel.resolve(nodes)
	if err != nil {
		return nodes, err
	}
	at := sel.End.Block + 1
	out := make([]*Node, 0, len(nodes)+1)
	out = append(out, nodes[:at]...)
	out = append(out, &Node{Kind: KindImage, Src: src})
	out = append(out, nodes[at:]...)
	return out, nil
}

// ReplaceSelection replaces the selected text with text. The inserted text
// takes the style found at the selection start. When the selection spans
// several blocks they are merged into the start block. Each line of text
// after the first becomes a block of its own, classified like an encoded
// line. The returned selection covers the inserted text.
func ReplaceSelection(nodes []*Node, sel Selection, text string) ([]*Node, Selection, error) {
	sel, err := sel.resolve(nodes)
	if err != nil {
		return nodes, sel, err
	}
	first, last := nodes[sel.Start.Block], nodes[sel.End.Block]
	firstRuns, lastRuns := flatten(first), flatten(last)

	before, inside, _ := splitRuns(firstRuns, sel.Start.Offset, runeLen(concat(firstRuns)))
	_, _, after := splitRuns(lastRuns, 0, sel.End.Offset)

	var style Style
	switch {
	case len(inside) > 0:
		style = inside[0].style
	case len(before) > 0:
		style = before[len(before)-1].style
	}

	lines := strings.Split(text, "\n")
	tail := len(lines) - 1
	runs := append(before, run{text: lines[0], style: style})
	if tail == 0 {
		runs = append(runs, after...)
	}

	cp := *first
	cp.Text = ""
	if cp.Kind == KindSpacer || cp.Kind == KindImage {
		cp.Kind = KindParagraph
		cp.Src = ""
	}
	cp.Children = inlineNodes(runs)

	out := make([]*Node, 0, len(nodes)-(sel.End.Block-sel.Start.Block)+tail)
	out = append(out, nodes[:sel.Start.Block]...)
	out = append(out, &cp)
	end := Point{Block: sel.Start.Block, Offset: sel.Start.Offset + runeLen(lines[0])}
	for i, line := range lines[1:] {
		n := encodeLine(line)
		if i == tail-1 {
			var width int
			n, width = withTrailing(n, line, after)
			end = Point{Block: sel.Start.Block + tail, Offset: width}
		}
		out = append(out, n)
	}
	out = append(out, nodes[sel.End.Block+1:]...)

	return out, Selection{Start: sel.Start, End: end}, nil
}

// withTrailing appends runs to an encoded block and returns it with the
// rune width of its own text. A spacer receiving text becomes a paragraph
// holding its blank line.
func withTrailing(n *Node, line string, runs []run) (*Node, int) {
	lead := flatten(n)
	if len(runs) == 0 {
		return n, runeLen(concat(lead))
	}
	if n.Kind == KindSpacer {
		n = &Node{Kind: KindParagraph}
		lead = []run{{text: line}}
	}
	n.Children = inlineNodes(append(lead, runs...))
	return n, runeLen(concat(lead))
}
