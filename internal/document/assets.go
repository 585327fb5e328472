package document

import "strings"

// AssetBase resolves relative paths against the public base URL of the
// deployment, e.g. "storage/uploads/a.png" -> "https://notes.example.com/storage/uploads/a.png".
type AssetBase struct {
	BaseURL string
}

func (a AssetBase) Resolve(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
