package ingest

import (
	"path/filepath"
	"strings"
)

// Kind is the result of classifying a file by name: its bytes travel either
// as raw UTF-8 text or as a base64 envelope.
type Kind int

const (
	// KindBinary is the conservative default: unknown extensions get
	// base64-encoded because silent corruption is worse than unnecessary
	// encoding.
	KindBinary Kind = iota
	KindText
)

// textExtensions is the closed allow-list of extensions treated as text.
// Everything else, including unknown extensions, is binary.
var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// Classify decides text vs binary purely from the filename's extension,
// case-insensitively. It is total: every input maps to a Kind.
func Classify(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	if textExtensions[ext] {
		return KindText
	}
	return KindBinary
}

// contentTypes maps known extensions to declared MIME types. Lookups that
// miss fall back to application/octet-stream; resolution never fails.
var contentTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".log":      "text/plain",
	".csv":      "text/csv",
	".html":     "text/html",
	".xml":      "application/xml",
	".json":     "application/json",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".pdf":      "application/pdf",
	".zip":      "application/zip",
	".gz":       "application/gzip",
	".tar":      "application/x-tar",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".svg":      "image/svg+xml",
	".webp":     "image/webp",
	".mp4":      "video/mp4",
	".mp3":      "audio/mpeg",
}

const fallbackContentType = "application/octet-stream"

// ContentTypeFor resolves the declared MIME type for a filename.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return fallbackContentType
}
