package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipExtractor unpacks ZIP archives.
type ZipExtractor struct{}

func (e *ZipExtractor) ContentTypes() []string {
	return []string{"application/zip", "application/x-zip-compressed"}
}

func (e *ZipExtractor) Extract(srcPath, targetPath string) error {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", srcPath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	for _, entry := range r.File {
		if err := e.extractEntry(entry, targetPath); err != nil {
			return err
		}
	}
	return nil
}

func (e *ZipExtractor) extractEntry(entry *zip.File, targetPath string) error {
	target, err := securePath(targetPath, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	return nil
}
