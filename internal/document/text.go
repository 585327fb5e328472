package document

import "strings"

const trimSet = " \t\n\r\x00\x0B"

// ExtractText flattens the document into plain text for prompt building.
// Marks are ignored. Every text leaf contributes its text plus one space and
// each level of the tree is trimmed on its own, so sibling blocks run
// together while words inside a block stay separated.
func ExtractText(doc *Document) string {
	if doc == nil {
		return ""
	}
	return extractNodes(doc.Content)
}

func extractNodes(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if t, ok := n.(*Text); ok && !t.NoText {
			b.WriteString(t.Text)
			b.WriteByte(' ')
		}
		if children := n.Children(); len(children) > 0 {
			b.WriteString(extractNodes(children))
		}
	}
	return strings.Trim(b.String(), trimSet)
}

// IsBlank reports whether doc is exactly what an untouched editor produces:
// a "doc" root with a single paragraph that has no content. An empty
// heading, an empty list or two empty paragraphs are not blank.
func IsBlank(doc *Document) bool {
	if doc == nil || doc.Type != TypeDoc || len(doc.Content) != 1 || doc.skipped != 0 {
		return false
	}
	p, ok := doc.Content[0].(*Paragraph)
	return ok && len(p.Children()) == 0 && !p.filled
}
