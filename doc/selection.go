package doc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCollapsedSelection = errors.New("selection is collapsed")
	ErrSelectionRange     = errors.New("selection out of range")
)

// Point addresses a position in a tree: a top-level block and a rune offset
// into that block's plain text.
type Point struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

func (p Point) before(q Point) bool {
	return p.Block < q.Block || (p.Block == q.Block && p.Offset < q.Offset)
}

// Selection is a range between two points. Start may come after End; it is
// normalized before use.
type Selection struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

func (s Selection) Collapsed() bool { return s.Start == s.End }

// resolve orders the points and clamps offsets to the text of their blocks.
func (s Selection) resolve(nodes []*Node) (Selection, error) {
	if s.End.before(s.Start) {
		s.Start, s.End = s.End, s.Start
	}
	if s.Start.Block < 0 || s.End.Block >= len(nodes) {
		return s, fmt.Errorf("%w: blocks %d..%d of %d", ErrSelectionRange, s.Start.Block, s.End.Block, len(nodes))
	}
	s.Start.Offset = clampOffset(nodes[s.Start.Block], s.Start.Offset)
	s.End.Offset = clampOffset(nodes[s.End.Block], s.End.Offset)
	return s, nil
}

func clampOffset(n *Node, off int) int {
	return max(0, min(off, runeLen(n.TextContent())))
}

// run is a stretch of text sharing one effective style.
type run struct {
	text  string
	style Style
}

// flatten returns the styled runs of a block in document order.
func flatten(block *Node) []run {
	var out []run
	for _, c := range block.Children {
		collectRuns(c, Style{}, &out)
	}
	if len(block.Children) == 0 && block.Kind != KindSpacer && block.Text != "" {
		out = append(out, run{text: block.Text})
	}
	return out
}

func collectRuns(n *Node, inherited Style, out *[]run) {
	switch {
	case n == nil:
	case n.Kind == KindText:
		if n.Text != "" {
			*out = append(*out, run{text: n.Text, style: inherited})
		}
	case n.Kind == KindSpan:
		style := inherited.Merge(n.Style)
		for _, c := range n.Children {
			collectRuns(c, style, out)
		}
		if len(n.Children) == 0 && n.Text != "" {
			*out = append(*out, run{text: n.Text, style: style})
		}
	case len(n.Children) == 0:
		if n.Text != "" && n.Kind != KindImage {
			*out = append(*out, run{text: n.Text, style: inherited})
		}
	default:
		for _, c := range n.Children {
			collectRuns(c, inherited, out)
		}
	}
}

// splitRuns cuts runs at the rune offsets from and to.
func splitRuns(runs []run, from, to int) (before, inside, after []run) {
	pos := 0
	for _, r := range runs {
		text := []rune(r.text)
		start := pos
		pos += len(text)
		lo := min(max(from-start, 0), len(text))
		hi := min(max(to-start, 0), len(text))
		if lo > 0 {
			before = append(before, run{text: string(text[:lo]), style: r.style})
		}
		if hi > lo {
			inside = append(inside, run{text: string(text[lo:hi]), style: r.style})
		}
		if hi < len(text) {
			after = append(after, run{text: string(text[hi:]), style: r.style})
		}
	}
	return before, inside, after
}

// inlineNodes rebuilds block children from runs, merging neighbours that
// share a style.
func inlineNodes(runs []run) []*Node {
	var merged []run
	for _, r := range runs {
		if r.text == "" {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].style == r.style {
			merged[n-1].text += r.text
			continue
		}
		merged = append(merged, r)
	}
	if len(merged) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(merged))
	for _, r := range merged {
		leaf := TextNode(r.text)
		if r.style.IsZero() {
			out = append(out, leaf)
			continue
		}
		out = append(out, &Node{Kind: KindSpan, Style: r.style, Children: []*Node{leaf}})
	}
	return out
}

func concat(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.text)
	}
	return b.String()
}

// SelectedText returns the plain text covered by sel, with a newline between
// blocks.
func SelectedText(nodes []*Node, sel Selection) (string, error) {
	sel, err := sel.resolve(nodes)
	if err != nil {
		return "", err
	}
	var parts []string
	for i := sel.Start.Block; i <= sel.End.Block; i++ {
		text := []rune(nodes[i].TextContent())
		from, to := 0, len(text)
		if i == sel.Start.Block {
			from = sel.Start.Offset
		}
		if i == sel.End.Block {
			to = sel.End.Offset
		}
		parts = append(parts, string(text[from:max(from, to)]))
	}
	return strings.Join(parts, "\n"), nil
}
