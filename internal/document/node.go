// Package document models the rich-text tree stored as a note's content and
// converts it to HTML (exports) and plain text (AI prompts).
//
// The tree is the editor's JSON document: a "doc" root holding typed block
// nodes, with "text" leaves carrying formatting marks. Parsing is lenient and
// never fails; anything malformed collapses to an empty subtree.
package document

import "encoding/json"

const TypeDoc = "doc"

// Document is the root value persisted verbatim as a note's content.
type Document struct {
	Type    string
	Content []Node

	// skipped counts content items that were not objects and so have no node.
	skipped int
}

// Node is one element of the tree. The set of implementations is closed:
// every known node kind has its own type and anything else becomes Unknown.
type Node interface {
	Children() []Node
	node()
}

type base struct {
	Content []Node

	// filled records that the stored "content" value was non-empty, even when
	// it held nothing that parses as a node.
	filled bool
}

func (b base) Children() []Node { return b.Content }
func (base) node()              {}

type Paragraph struct {
	base
	TextAlign string
}

type Heading struct {
	base
	Level string
}

type BulletList struct{ base }

type OrderedList struct{ base }

type ListItem struct{ base }

type TaskList struct{ base }

type TaskItem struct {
	base
	Checked bool
}

type Image struct {
	base
	Src string
	Alt string
}

type MathBlock struct {
	base
	Latex string
}

// ChartBlock keeps the chart definition untouched; it is never rendered.
type ChartBlock struct {
	base
	Spec json.RawMessage
}

type Text struct {
	base
	Text  string
	Marks []Mark
	// NoText is set when the node carries no "text" value at all.
	NoText bool
}

// Unknown is any node type the renderer has no template for. It renders as
// its children only.
type Unknown struct {
	base
	Type string
}

// Mark is an inline formatting annotation on a Text node. Like Node, the set
// of implementations is closed.
type Mark interface {
	mark()
}

type Bold struct{}
type Italic struct{}
type Underline struct{}
type Subscript struct{}
type Superscript struct{}

type Color struct {
	Color string
}

type TextStyle struct {
	FontSize   string
	FontFamily string
}

type UnknownMark struct {
	Type string
}

func (Bold) mark()        {}
func (Italic) mark()      {}
func (Underline) mark()   {}
func (Subscript) mark()   {}
func (Superscript) mark() {}
func (Color) mark()       {}
func (TextStyle) mark()   {}
func (UnknownMark) mark() {}

// Blank returns the document an empty editor produces: a single paragraph
// without content.
func Blank() *Document {
	return &Document{
		Type:    TypeDoc,
		Content: []Node{&Paragraph{}},
	}
}

// BlankJSON is the serialized form of Blank.
var BlankJSON = json.RawMessage(`{"type":"doc","content":[{"type":"paragraph"}]}`)
