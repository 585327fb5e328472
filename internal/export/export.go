// Package export turns rendered note HTML into downloadable documents.
package export

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	WordContentType = "application/msword"
	PDFContentType  = "application/pdf"
)

func WordFilename(noteID string) string {
	return fmt.Sprintf("note_%s.doc", noteID)
}

func PDFFilename(noteID string) string {
	return fmt.Sprintf("note-%s.pdf", noteID)
}

// WordDocument wraps body HTML in the minimal page Word opens as a .doc file.
func WordDocument(body string) []byte {
	return []byte("<html>\n<head><meta charset=\"utf-8\"></head>\n<body style=\"font-family:sans-serif;\">\n" +
		body + "\n</body>\n</html>")
}

// pagePolicy is the Content-Security-Policy of the printed page. The page is
// loaded from a local file, so frames, scripts and file: resources are
// refused and only remote or inline images and inline styles load.
const pagePolicy = "default-src 'none'; img-src http: https: data:; style-src 'unsafe-inline'"

// PDFDocument is the printable page handed to the PDF renderer. The page
// is A4 with 20mm vertical and 15mm horizontal margins.
func PDFDocument(title, body string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="Content-Security-Policy" content="` + pagePolicy + `">
<title>` + html.EscapeString(title) + `</title>
<style>
@page { size: A4; margin: 20mm 15mm; }
body { font-family: sans-serif; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
img { max-width: 100%; }
.chart-placeholder { padding: 8px; border: 1px dashed #999; }
</style>
</head>
<body>
<h1>` + html.EscapeString(title) + `</h1>
` + body + `
</body>
</html>`
}

type PDFRenderer interface {
	RenderPDF(ctx context.Context, page string) ([]byte, error)
}

// ChromePDF prints pages with a headless Chrome or Chromium binary.
type ChromePDF struct {
	Path    string
	Timeout time.Duration
}

func NewChromePDF(path string, timeout time.Duration) *ChromePDF {
	return &ChromePDF{Path: path, Timeout: timeout}
}

func (c *ChromePDF) RenderPDF(ctx context.Context, page string) ([]byte, error) {
	if c.Path == "" {
		return nil, errors.New("chrome path is not configured")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp("", "note-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "note.html")
	output := filepath.Join(dir, "note.pdf")

	if err := os.WriteFile(input, []byte(page), 0o600); err != nil {
		return nil, fmt.Errorf("write page: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Path,
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--no-pdf-header-footer",
		"--print-to-pdf="+output,
		"file://"+input,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("chrome print failed: %w: %s", err, out)
	}

	pdf, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	return pdf, nil
}

// File is a generated document ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Inline      bool
}
