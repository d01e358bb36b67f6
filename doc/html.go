package doc

import (
	"fmt"
	"html"
	"net/url"
	"slices"
	"strings"
)

// URL schemes the rendered markup may point at. Relative references carry no
// scheme and are always allowed.
var (
	linkSchemes  = []string{"http", "https", "mailto"}
	imageSchemes = []string{"http", "https"}
)

func safeURL(raw string, schemes []string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme == "" || slices.Contains(schemes, u.Scheme)
}

// RenderHTML renders display blocks as the markup shown on the canvas.
func RenderHTML(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		renderBlock(&b, n)
	}
	return b.String()
}

func renderBlock(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	var tag string
	switch n.Kind {
	case KindHeading1:
		tag = "h2"
	case KindHeading2:
		tag = "h3"
	case KindListItem:
		tag = "li"
	case KindQuote:
		tag = "blockquote"
	case KindSpacer:
		b.WriteString(`<div class="spacer"></div>`)
		return
	case KindImage:
		if safeURL(n.Src, imageSchemes) {
			fmt.Fprintf(b, `<img src="%s">`, html.EscapeString(n.Src))
		}
		return
	default:
		tag = "p"
	}
	b.WriteString("<" + tag)
	switch n.Align {
	case AlignCenter, AlignRight:
		fmt.Fprintf(b, ` style="text-align:%s"`, n.Align)
	}
	b.WriteString(">")
	if len(n.Children) == 0 {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		renderInline(b, c)
	}
	b.WriteString("</" + tag + ">")
}

func renderInline(b *strings.Builder, n *Node) {
	switch {
	case n == nil:
	case n.Kind == KindText:
		b.WriteString(html.EscapeString(n.Text))
	case n.Kind == KindSpan:
		open, closing := spanTags(n.Style)
		b.WriteString(open)
		if len(n.Children) == 0 {
			b.WriteString(html.EscapeString(n.Text))
		}
		for _, c := range n.Children {
			renderInline(b, c)
		}
		b.WriteString(closing)
	default:
		b.WriteString(html.EscapeString(n.TextContent()))
	}
}

func spanTags(s Style) (string, string) {
	var css []string
	if s.FontFamily != "" {
		css = append(css, "font-family:"+html.EscapeString(s.FontFamily))
	}
	if s.FontSize != 0 {
		css = append(css, fmt.Sprintf("font-size:%dpx", s.FontSize))
	}
	if s.Bold {
		css = append(css, "font-weight:bold")
	}
	if s.Italic {
		css = append(css, "font-style:italic")
	}
	if s.Underline {
		css = append(css, "text-decoration:underline")
	}
	open := "<span"
	if len(css) > 0 {
		open += ` style="` + strings.Join(css, ";") + `"`
	}
	open += ">"
	closing := "</span>"
	if s.Href != "" && safeURL(s.Href, linkSchemes) {
		open = `<a href="` + html.EscapeString(s.Href) + `">` + open
		closing += "</a>"
	}
	return open, closing
}
