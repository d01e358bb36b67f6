package extract

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Aditi-179/Docify/doc"
)

// Outline splits markdown into one section per heading. Text before the
// first heading becomes a section without a heading. Paragraphs are joined
// by blank lines and list items are rendered as "- " lines.
func Outline(source []byte) []doc.Section {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		sections []doc.Section
		current  *doc.Section
		parts    []string
	)
	flush := func() {
		if current == nil && len(parts) == 0 {
			return
		}
		if current == nil {
			current = &doc.Section{Level: 1}
		}
		current.ID = strconv.Itoa(len(sections) + 1)
		current.Content = strings.Join(parts, "\n\n")
		sections = append(sections, *current)
		current, parts = nil, nil
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			flush()
			current = &doc.Section{Heading: inlineText(n, source), Level: n.Level}
		case *ast.List:
			var items []string
			for li := n.FirstChild(); li != nil; li = li.NextSibling() {
				items = append(items, "- "+inlineText(li, source))
			}
			parts = append(parts, strings.Join(items, "\n"))
		case *ast.ThematicBreak:
		default:
			if s := blockText(n, source); s != "" {
				parts = append(parts, s)
			}
		}
	}
	flush()
	return sections
}

// inlineText flattens the inline content below n, turning line breaks into
// spaces.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.CodeSpan:
			for t := c.FirstChild(); t != nil; t = t.NextSibling() {
				if t, ok := t.(*ast.Text); ok {
					b.Write(t.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockText(n ast.Node, source []byte) string {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return inlineText(n, source)
	}
}
