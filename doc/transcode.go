package doc

import "strings"

// Line prefixes recognized by Encode, in precedence order.
const (
	heading1Prefix = "## "
	heading2Prefix = "### "
	listPrefix     = "- "
)

// Encode converts flat content into display blocks, one per line.
//
// Lines starting with "## " become Heading1, "### " Heading2 and "- "
// ListItem, with the prefix stripped. Blank lines become spacers, one per
// line. Everything else is a paragraph holding the line verbatim; inline
// markup is not interpreted.
func Encode(content string) []*Node {
	lines := strings.Split(content, "\n")
	nodes := make([]*Node, 0, len(lines))
	for _, line := range lines {
		nodes = append(nodes, encodeLine(line))
	}
	return nodes
}

func encodeLine(line string) *Node {
	switch {
	case strings.HasPrefix(line, heading1Prefix):
		return NewBlock(KindHeading1, line[len(heading1Prefix):])
	case strings.HasPrefix(line, heading2Prefix):
		return NewBlock(KindHeading2, line[len(heading2Prefix):])
	case strings.HasPrefix(line, listPrefix):
		return NewBlock(KindListItem, line[len(listPrefix):])
	case strings.TrimSpace(line) == "":
		return &Node{Kind: KindSpacer, Text: line}
	default:
		return NewBlock(KindParagraph, line)
	}
}

// Decode converts display blocks back into flat content. It never fails;
// see DecodeReport for the nodes it could only approximate.
func Decode(nodes []*Node) string {
	content, _ := DecodeReport(nodes)
	return content
}

// DecodeReport converts display blocks back into flat content, one line per
// block, and returns the indexes of blocks whose kind has no line form.
// Those blocks are reduced to their plain text.
//
// Only the direct children are classified. Anything nested inside a block
// is flattened into that block's text.
func DecodeReport(nodes []*Node) (string, []int) {
	lines := make([]string, len(nodes))
	var degraded []int
	for i, n := range nodes {
		line, ok := decodeBlock(n)
		if !ok {
			degraded = append(degraded, i)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), degraded
}

func decodeBlock(n *Node) (string, bool) {
	if n == nil {
		return "", false
	}
	text := n.TextContent()
	switch n.Kind {
	case KindHeading1:
		return heading1Prefix + text, true
	case KindHeading2:
		return heading2Prefix + text, true
	case KindListItem:
		return listPrefix + text, true
	case KindSpacer:
		// Text typed into a spacer is kept as a paragraph line.
		if strings.TrimSpace(text) != "" {
			return text, true
		}
		if strings.TrimSpace(n.Text) == "" {
			return n.Text, true
		}
		return "", true
	case KindParagraph, KindText, KindSpan:
		return text, true
	default:
		return text, false
	}
}
