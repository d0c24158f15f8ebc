// Package extract unpacks import packages into a target directory. Support
// for an archive format is registered per content type; ZIP and TAR (plain
// and gzip-compressed) are built in.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"repositum/internal/domain"
)

// Extractor unpacks a single archive format.
type Extractor interface {
	// ContentTypes returns the media types this extractor handles.
	ContentTypes() []string
	// Extract unpacks the archive at srcPath into targetPath, creating the
	// directory if needed.
	Extract(srcPath, targetPath string) error
}

var extractors = map[string]Extractor{}

func init() {
	Register(&ZipExtractor{})
	Register(&TarExtractor{})
}

// Register adds an extractor for its content types, replacing any previous
// registration.
func Register(e Extractor) {
	for _, ct := range e.ContentTypes() {
		extractors[strings.ToLower(ct)] = e
	}
}

// ForContentType returns the extractor registered for the given media type.
// Parameters (e.g. "; charset=...") are ignored.
func ForContentType(contentType string) (Extractor, error) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	e, ok := extractors[mediaType]
	if !ok {
		return nil, &domain.UnsupportedMediaTypeError{
			Message: fmt.Sprintf("no extractor registered for content type %q", contentType),
		}
	}
	return e, nil
}

// SupportedContentTypes lists all registered media types.
func SupportedContentTypes() []string {
	types := make([]string, 0, len(extractors))
	for ct := range extractors {
		types = append(types, ct)
	}
	return types
}

// Unpack extracts the archive at srcPath. When targetPath is empty a sibling
// directory named after the archive is used; if that already exists a
// numeric suffix (_1, _2, ...) is appended until a free name is found.
func Unpack(e Extractor, srcPath, targetPath string, logger *slog.Logger) (string, error) {
	logger.Debug("processing package file", "path", srcPath)

	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("package %s is not readable: %w", srcPath, err)
	}
	f.Close()

	if targetPath == "" {
		targetPath = generateTargetPath(srcPath)
	}

	if err := e.Extract(srcPath, targetPath); err != nil {
		return "", err
	}
	return targetPath, nil
}

func generateTargetPath(srcPath string) string {
	base := trimArchiveSuffix(filepath.Base(srcPath))
	basePath := filepath.Join(filepath.Dir(srcPath), base)

	targetPath := basePath
	for count := 1; ; count++ {
		if _, err := os.Stat(targetPath); os.IsNotExist(err) {
			return targetPath
		}
		targetPath = fmt.Sprintf("%s_%d", basePath, count)
	}
}

// trimArchiveSuffix removes the archive extension from a file name, treating
// compound suffixes like .tar.gz as a single extension.
func trimArchiveSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range []string{".tar.gz", ".tgz"} {
		if strings.HasSuffix(lower, suffix) && len(name) > len(suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// securePath joins name onto dir and rejects entries that would escape the
// extraction directory.
func securePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}
