package document

import (
	"strings"
)

const chartPlaceholder = "<div class='chart-placeholder'>📊 <i>Chart block (to be rendered)</i></div>"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// AssetResolver turns a relative asset path into an absolute URL.
type AssetResolver interface {
	Resolve(path string) string
}

// Renderer converts documents to HTML fragments.
type Renderer struct {
	assets AssetResolver
}

// NewRenderer returns a Renderer. assets may be nil, in which case relative
// image sources are emitted unchanged.
func NewRenderer(assets AssetResolver) *Renderer {
	return &Renderer{assets: assets}
}

// RenderHTML parses raw and renders it; malformed input renders as "".
func RenderHTML(raw []byte, assets AssetResolver) string {
	return NewRenderer(assets).HTML(Parse(raw))
}

// HTML renders the document's top-level nodes in order.
func (r *Renderer) HTML(doc *Document) string {
	if doc == nil {
		return ""
	}
	return r.renderNodes(doc.Content)
}

func (r *Renderer) renderNodes(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.renderNode(n))
	}
	return b.String()
}

func (r *Renderer) renderNode(n Node) string {
	children := r.renderNodes(n.Children())

	switch n := n.(type) {
	case *Text:
		return renderText(n)
	case *Heading:
		return "<h" + n.Level + ">" + children + "</h" + n.Level + ">"
	case *Paragraph:
		style := ""
		if n.TextAlign != "" {
			style = "text-align:" + n.TextAlign + ";"
		}
		return "<p style='" + style + "'>" + children + "</p>"
	case *BulletList:
		return "<ul>" + children + "</ul>"
	case *OrderedList:
		return "<ol>" + children + "</ol>"
	case *ListItem:
		return "<li>" + children + "</li>"
	case *TaskList:
		return "<ul class='task-list'>" + children + "</ul>"
	case *TaskItem:
		checked := ""
		if n.Checked {
			checked = "checked"
		}
		return "<li><input type='checkbox' disabled " + checked + "> " + children + "</li>"
	case *Image:
		return "<img src='" + r.imageSource(n.Src) + "' alt='" + n.Alt + "' style='max-width:100%; margin:10px 0;' />"
	case *MathBlock:
		return "<div class='math-block'>\\[" + n.Latex + "\\]</div>"
	case *ChartBlock:
		return chartPlaceholder
	default:
		return children
	}
}

func (r *Renderer) imageSource(src string) string {
	if src == "" || strings.HasPrefix(src, "http") || r.assets == nil {
		return src
	}
	return r.assets.Resolve(src)
}

// inline is the running state while marks are folded over a text leaf.
type inline struct {
	text  string
	style string
}

func (s inline) apply(m Mark) inline {
	switch m := m.(type) {
	case Bold:
		s.text = "<strong>" + s.text + "</strong>"
	case Italic:
		s.text = "<em>" + s.text + "</em>"
	case Underline:
		s.text = "<u>" + s.text + "</u>"
	case Subscript:
		s.text = "<sub>" + s.text + "</sub>"
	case Superscript:
		s.text = "<sup>" + s.text + "</sup>"
	case Color:
		s.style += "color:" + m.Color + ";"
	case TextStyle:
		if m.FontSize != "" {
			s.style += "font-size:" + m.FontSize + ";"
		}
		if m.FontFamily != "" {
			s.style += "font-family:" + m.FontFamily + ";"
		}
	}
	return s
}

func renderText(t *Text) string {
	s := inline{text: textEscaper.Replace(t.Text)}
	for _, m := range t.Marks {
		s = s.apply(m)
	}
	return `<span style="` + s.style + `">` + s.text + "</span>"
}
