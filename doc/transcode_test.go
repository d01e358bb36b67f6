package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_LineKinds(t *testing.T) {
	nodes := Encode("## Title\n### Sub\n- item\n\nplain *text* # here\n   ")
	require.Len(t, nodes, 6)

	want := []struct {
		kind Kind
		text string
	}{
		{KindHeading1, "Title"},
		{KindHeading2, "Sub"},
		{KindListItem, "item"},
		{KindSpacer, ""},
		{KindParagraph, "plain *text* # here"},
		{KindSpacer, ""},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, nodes[i].Kind, "node %d", i)
		assert.Equal(t, w.text, nodes[i].TextContent(), "node %d", i)
	}
}

func TestEncode_HeadingWinsOverListMarker(t *testing.T) {
	nodes := Encode("## a - b")
	require.Len(t, nodes, 1)
	assert.Equal(t, KindHeading1, nodes[0].Kind)
	assert.Equal(t, "a - b", nodes[0].TextContent())
}

func TestEncode_BlankLinesNotCollapsed(t *testing.T) {
	nodes := Encode("a\n\n\n\nb")
	require.Len(t, nodes, 5)
	for _, n := range nodes[1:4] {
		assert.Equal(t, KindSpacer, n.Kind)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"single paragraph", "hello"},
		{"generated", RenderSections([]Section{{Heading: "One", Content: "Body"}, {Heading: "Two", Content: "- x\n- y"}})},
		{"trailing newline", "## a\n"},
		{"consecutive blanks", "a\n\n\n\nb"},
		{"empty heading", "## \n### \n- "},
		{"whitespace blank lines", "a\n  \n\t\nb"},
		{"hash without space", "##x\n###y\n-z"},
		{"unicode", "## Überblick\n- naïve café"},
		{"carriage returns", "a\r\n## b\r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.content, Decode(Encode(tt.content)))
		})
	}
}

func TestDecode_FlattensNestedStructure(t *testing.T) {
	nodes := []*Node{
		{Kind: KindHeading1, Children: []*Node{
			{Kind: KindSpan, Style: Style{Bold: true}, Children: []*Node{TextNode("Bold")}},
			{Kind: KindListItem, Children: []*Node{TextNode(" nested")}},
		}},
	}
	assert.Equal(t, "## Bold nested", Decode(nodes))
}

func TestDecodeReport_LossyFallback(t *testing.T) {
	nodes := []*Node{
		NewBlock(KindParagraph, "keep"),
		NewBlock(KindQuote, "quoted"),
		{Kind: KindImage, Src: "x.png"},
		{Kind: KindUnknown, Text: "raw"},
		nil,
	}
	content, degraded := DecodeReport(nodes)
	assert.Equal(t, "keep\nquoted\n\nraw\n", content)
	assert.Equal(t, []int{1, 2, 3, 4}, degraded)
}

func TestDecode_EmptyTree(t *testing.T) {
	assert.Equal(t, "", Decode(nil))
}

func TestDecode_TextTypedIntoSpacer(t *testing.T) {
	nodes := []*Node{{Kind: KindSpacer, Children: []*Node{TextNode("typed")}}}
	assert.Equal(t, "typed", Decode(nodes))
}

func TestKind_JSON(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("heading2")))
	assert.Equal(t, KindHeading2, k)
	require.NoError(t, k.UnmarshalText([]byte("table")))
	assert.Equal(t, KindUnknown, k)

	b, err := KindListItem.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "listItem", string(b))
}

func TestRenderHTML(t *testing.T) {
	nodes := Encode("## A <b>\n\n- item")
	assert.Equal(t, `<h2>A &lt;b&gt;</h2><div class="spacer"></div><li>item</li>`, RenderHTML(nodes))
}

func TestRenderHTML_UnsafeAttributes(t *testing.T) {
	nodes := []*Node{
		{Kind: KindParagraph, Align: `x"><script>alert(1)</script><p a="`, Children: []*Node{TextNode("hi")}},
		{Kind: KindParagraph, Children: []*Node{
			{Kind: KindSpan, Style: Style{Href: "javascript:alert(1)"}, Children: []*Node{TextNode("bad")}},
			{Kind: KindSpan, Style: Style{Href: "https://example.com/?a=1&b=2"}, Children: []*Node{TextNode("good")}},
		}},
		{Kind: KindImage, Src: "javascript:alert(1)"},
		{Kind: KindParagraph, Align: AlignRight},
	}
	out := RenderHTML(nodes)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Equal(t, `<p>hi</p>`+
		`<p><span>bad</span><a href="https://example.com/?a=1&amp;b=2"><span>good</span></a></p>`+
		`<p style="text-align:right"></p>`, out)
}
