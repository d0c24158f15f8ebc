package importer

import (
	"strings"
)

// FileTypes is the allow-list for imported files: per file extension the
// acceptable MIME types. Files whose extension is unknown or whose detected
// content type is not listed are rejected.
type FileTypes struct {
	mimeTypes map[string][]string
}

// NewFileTypes builds the allow-list from configuration. Extensions and MIME
// types are matched case-insensitively.
func NewFileTypes(mimeTypes map[string][]string) *FileTypes {
	normalized := make(map[string][]string, len(mimeTypes))
	for ext, types := range mimeTypes {
		key := strings.ToLower(strings.TrimPrefix(ext, "."))
		for _, t := range types {
			normalized[key] = append(normalized[key], strings.ToLower(t))
		}
	}
	return &FileTypes{mimeTypes: normalized}
}

// DefaultFileTypes returns the built-in allow-list for common publication
// formats.
func DefaultFileTypes() *FileTypes {
	return NewFileTypes(map[string][]string{
		"pdf":  {"application/pdf"},
		"ps":   {"application/postscript"},
		"txt":  {"text/plain"},
		"html": {"text/html"},
		"htm":  {"text/html"},
		"xml":  {"text/xml", "application/xml"},
		"csv":  {"text/csv", "text/plain"},
		"rtf":  {"application/rtf", "text/rtf"},
		"odt":  {"application/vnd.oasis.opendocument.text", "application/zip"},
		"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
		"epub": {"application/epub+zip", "application/zip"},
		"jpg":  {"image/jpeg"},
		"jpeg": {"image/jpeg"},
		"png":  {"image/png"},
		"gif":  {"image/gif"},
		"tif":  {"image/tiff"},
		"tiff": {"image/tiff"},
	})
}

// IsAllowed reports whether a file with the given extension and detected
// MIME type may be imported. MIME type parameters ("; charset=...") are
// ignored.
func (ft *FileTypes) IsAllowed(extension, mimeType string) bool {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	mediaType := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	for _, allowed := range ft.mimeTypes[ext] {
		if allowed == mediaType {
			return true
		}
	}
	return false
}
