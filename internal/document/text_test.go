package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no content",
			doc:  `{"type":"doc"}`,
			want: "",
		},
		{
			name: "single text node",
			doc:  `{"type":"doc","content":[{"type":"text","text":"Hello"}]}`,
			want: "Hello",
		},
		{
			name: "text nodes without text add nothing",
			doc:  `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"a"},{"type":"text"},{"type":"text","text":null},{"type":"text","text":"b"}]}]}`,
			want: "a b",
		},
		{
			name: "words in one block are space separated",
			doc:  `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello"},{"type":"text","text":"world","marks":[{"type":"bold"}]}]}]}`,
			want: "Hello world",
		},
		{
			name: "sibling blocks are joined directly",
			doc: `{"type":"doc","content":[` +
				`{"type":"paragraph","content":[{"type":"text","text":"First"}]},` +
				`{"type":"paragraph","content":[{"type":"text","text":"Second"}]}]}`,
			want: "FirstSecond",
		},
		{
			name: "nested lists",
			doc: `{"type":"doc","content":[{"type":"bulletList","content":[` +
				`{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"  padded  "}]}]}]}]}`,
			want: "padded",
		},
		{
			name: "non text nodes contribute nothing",
			doc:  `{"type":"doc","content":[{"type":"mathBlock","attrs":{"latex":"x"}},{"type":"image","attrs":{"src":"a.png"}}]}`,
			want: "",
		},
		{
			name: "non array content is skipped",
			doc:  `{"type":"doc","content":[{"type":"paragraph","content":"junk"},{"type":"text","text":"kept"}]}`,
			want: "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(Parse([]byte(tt.doc))))
		})
	}
}

func TestExtractText_NeverPanics(t *testing.T) {
	for _, in := range []string{``, `null`, `"str"`, `{}`, `{"content":null}`, `[{"type":"text","text":"x"}]`} {
		assert.NotPanics(t, func() {
			assert.Equal(t, "", ExtractText(Parse([]byte(in))))
		}, "input %q", in)
	}
	assert.Equal(t, "", ExtractText(nil))
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"single empty paragraph", `{"type":"doc","content":[{"type":"paragraph"}]}`, true},
		{"single paragraph with empty content", `{"type":"doc","content":[{"type":"paragraph","content":[]}]}`, true},
		{"paragraph with text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]}`, false},
		{"paragraph with null content", `{"type":"doc","content":[{"type":"paragraph","content":null}]}`, true},
		{"paragraph with string content", `{"type":"doc","content":[{"type":"paragraph","content":"x"}]}`, false},
		{"paragraph with non-object items", `{"type":"doc","content":[{"type":"paragraph","content":[1]}]}`, false},
		{"non-object sibling of the paragraph", `{"type":"doc","content":[{"type":"paragraph"},1]}`, false},
		{"two empty paragraphs", `{"type":"doc","content":[{"type":"paragraph"},{"type":"paragraph"}]}`, false},
		{"empty heading", `{"type":"doc","content":[{"type":"heading"}]}`, false},
		{"empty bullet list", `{"type":"doc","content":[{"type":"bulletList"}]}`, false},
		{"no content", `{"type":"doc"}`, false},
		{"empty content", `{"type":"doc","content":[]}`, false},
		{"wrong root type", `{"type":"page","content":[{"type":"paragraph"}]}`, false},
		{"not json", `nope`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBlank(Parse([]byte(tt.doc))))
		})
	}
}

func TestBlank(t *testing.T) {
	assert.True(t, IsBlank(Blank()))
	assert.True(t, IsBlank(Parse(BlankJSON)))
	assert.Equal(t, "<p style=''></p>", NewRenderer(nil).HTML(Blank()))
}

func TestParse_NodeModel(t *testing.T) {
	doc := Parse([]byte(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":"4"}},
		{"type":"taskItem","attrs":{"checked":1}},
		{"type":"taskItem","attrs":{"checked":"0"}},
		{"type":"chartBlock","attrs":{"kind":"pie"}},
		{"type":"text","text":"t","marks":[{"type":"color","attrs":{"color":"blue"}}]}
	]}`))

	require.Len(t, doc.Content, 5)
	assert.Equal(t, "4", doc.Content[0].(*Heading).Level)
	assert.True(t, doc.Content[1].(*TaskItem).Checked)
	assert.False(t, doc.Content[2].(*TaskItem).Checked)
	assert.JSONEq(t, `{"kind":"pie"}`, string(doc.Content[3].(*ChartBlock).Spec))

	text := doc.Content[4].(*Text)
	assert.Equal(t, "t", text.Text)
	assert.Equal(t, []Mark{Color{Color: "blue"}}, text.Marks)
}

func TestAssetBase_Resolve(t *testing.T) {
	assert.Equal(t, "https://a.test/storage/x.png", AssetBase{BaseURL: "https://a.test"}.Resolve("storage/x.png"))
	assert.Equal(t, "https://a.test/storage/x.png", AssetBase{BaseURL: "https://a.test/"}.Resolve("/storage/x.png"))
}
