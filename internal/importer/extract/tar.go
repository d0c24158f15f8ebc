package extract

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TarExtractor unpacks TAR archives, transparently decompressing gzip.
type TarExtractor struct{}

func (e *TarExtractor) ContentTypes() []string {
	return []string{"application/x-tar", "application/tar", "application/gzip", "application/x-gzip"}
}

func (e *TarExtractor) Extract(srcPath, targetPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open tar %s: %w", srcPath, err)
	}
	defer f.Close()

	var src io.Reader = f
	if isGzip(srcPath) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip %s: %w", srcPath, err)
		}
		defer gz.Close()
		src = gz
	}

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	tr := tar.NewReader(src)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar %s: %w", srcPath, err)
		}
		if err := e.extractEntry(tr, hdr, targetPath); err != nil {
			return err
		}
	}
}

func (e *TarExtractor) extractEntry(tr *tar.Reader, hdr *tar.Header, targetPath string) error {
	target, err := securePath(targetPath, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", hdr.Name, err)
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("create %s: %w", target, err)
		}
		defer dst.Close()
		if _, err := io.Copy(dst, tr); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
		return nil
	default:
		// links, devices and the like are not part of import packages
		return nil
	}
}

func isGzip(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".tgz")
}
