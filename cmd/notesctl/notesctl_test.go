package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-notes-server/pkg/hash"
	"lesson-notes-server/pkg/jwt"
)

const sampleDoc = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Photosynthesis"}]},
	{"type":"paragraph","content":[{"type":"text","text":"Light ","marks":[{"type":"bold"}]},{"type":"text","text":"energy"}]},
	{"type":"image","attrs":{"src":"uploads/leaf.png","alt":"leaf"}}
]}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRenderHTML(t *testing.T) {
	out, err := run(t, "", "render", "html", "--base-url", "https://cdn.example.com/", writeDoc(t, sampleDoc))
	require.NoError(t, err)

	assert.Contains(t, out, `<h1><span style="">Photosynthesis</span></h1>`)
	assert.Contains(t, out, "<strong>Light </strong>")
	assert.Contains(t, out, "src='https://cdn.example.com/uploads/leaf.png'")
}

func TestRenderHTML_WordShell(t *testing.T) {
	out, err := run(t, sampleDoc, "render", "html", "--word", "-")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<html>\n<head><meta charset=\"utf-8\"></head>"))
	assert.True(t, strings.HasSuffix(out, "</body>\n</html>"))
}

func TestRenderText(t *testing.T) {
	out, err := run(t, sampleDoc, "render", "text", "-")
	require.NoError(t, err)

	assert.Equal(t, "PhotosynthesisLight  energy\n", out)
}

func TestRender_MissingFile(t *testing.T) {
	_, err := run(t, "", "render", "text", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestBlank(t *testing.T) {
	out, err := run(t, "", "blank")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph"}]}`, out)

	out, err = run(t, strings.TrimSpace(out), "blank", "--check", "-")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "", "blank", "--check", writeDoc(t, sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestHashKey(t *testing.T) {
	out, err := run(t, "", "hash-key", "lms-shared-key-123")
	require.NoError(t, err)
	assert.NoError(t, hash.Compare(strings.TrimSpace(out), "lms-shared-key-123"))

	_, err = run(t, "", "hash-key", "short")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "notesctl-secret")

	out, err := run(t, "", "token", "--student", "4", "--course", "9", "--lesson", "Cells")
	require.NoError(t, err)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	claims, err := jwt.ValidateToken(resp.Token, "notesctl-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(4), claims.StudentID)
	assert.Nil(t, claims.UnitNumber)
	require.NotNil(t, claims.LessonTitle)
	assert.Equal(t, "Cells", *claims.LessonTitle)
}
