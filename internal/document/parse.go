package document

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const defaultHeadingLevel = "2"

// Parse decodes a stored document. Content that was saved as a JSON string
// holding the document is unwrapped once. Invalid input yields an empty
// document, never an error.
func Parse(raw []byte) *Document {
	v, ok := decode(raw)
	if !ok {
		return &Document{}
	}
	if s, isString := v.(string); isString {
		if v, ok = decode([]byte(s)); !ok {
			return &Document{}
		}
	}
	return FromValue(v)
}

// FromValue builds a document from an already decoded JSON value, as
// produced by encoding/json into an interface{}.
func FromValue(v any) *Document {
	m, ok := v.(map[string]any)
	if !ok {
		return &Document{}
	}
	typ, _ := m["type"].(string)
	items, _ := m["content"].([]any)
	nodes := parseNodes(items)
	return &Document{
		Type:    typ,
		Content: nodes,
		skipped: len(items) - len(nodes),
	}
}

func decode(raw []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func parseNodes(v any) []Node {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		nodes = append(nodes, parseNode(m))
	}
	return nodes
}

func parseNode(m map[string]any) Node {
	typ, _ := m["type"].(string)
	attrs, _ := m["attrs"].(map[string]any)
	b := base{Content: parseNodes(m["content"]), filled: truthy(m["content"])}

	switch typ {
	case "text":
		return &Text{base: b, Text: stringValue(m["text"]), Marks: parseMarks(m["marks"]), NoText: m["text"] == nil}
	case "paragraph":
		p := &Paragraph{base: b}
		if truthy(attrs["textAlign"]) {
			p.TextAlign = stringValue(attrs["textAlign"])
		}
		return p
	case "heading":
		level := defaultHeadingLevel
		if v, ok := attrs["level"]; ok && v != nil {
			level = stringValue(v)
		}
		return &Heading{base: b, Level: level}
	case "bulletList":
		return &BulletList{base: b}
	case "orderedList":
		return &OrderedList{base: b}
	case "listItem":
		return &ListItem{base: b}
	case "taskList":
		return &TaskList{base: b}
	case "taskItem":
		return &TaskItem{base: b, Checked: truthy(attrs["checked"])}
	case "image":
		return &Image{base: b, Src: stringValue(attrs["src"]), Alt: stringValue(attrs["alt"])}
	case "mathBlock":
		return &MathBlock{base: b, Latex: stringValue(attrs["latex"])}
	case "chartBlock":
		spec, _ := json.Marshal(attrs)
		return &ChartBlock{base: b, Spec: spec}
	default:
		return &Unknown{base: b, Type: typ}
	}
}

func parseMarks(v any) []Mark {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	marks := make([]Mark, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		attrs, _ := m["attrs"].(map[string]any)

		switch typ {
		case "bold":
			marks = append(marks, Bold{})
		case "italic":
			marks = append(marks, Italic{})
		case "underline":
			marks = append(marks, Underline{})
		case "subscript":
			marks = append(marks, Subscript{})
		case "superscript":
			marks = append(marks, Superscript{})
		case "color":
			marks = append(marks, Color{Color: stringValue(attrs["color"])})
		case "textStyle":
			ts := TextStyle{}
			if truthy(attrs["fontSize"]) {
				ts.FontSize = stringValue(attrs["fontSize"])
			}
			if truthy(attrs["fontFamily"]) {
				ts.FontFamily = stringValue(attrs["fontFamily"])
			}
			marks = append(marks, ts)
		default:
			marks = append(marks, UnknownMark{Type: typ})
		}
	}
	return marks
}

// stringValue renders a scalar attribute the way it is interpolated into
// markup. Objects and arrays have no textual form and become "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		// Integral floats such as 3.0 print as 3.
		if strings.ContainsAny(t.String(), ".eE") {
			if f, err := t.Float64(); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		return ""
	}
}

// truthy reports whether an attribute counts as set: false, 0, "", "0",
// null and empty collections do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
