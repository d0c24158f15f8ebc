package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repositum/internal/domain"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeTar(t *testing.T, path string, files map[string]string, compress bool) {
	t.Helper()

	var buf bytes.Buffer
	var out io.Writer = &buf
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(&buf)
		out = gz
	}
	tw := tar.NewWriter(out)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	if gz != nil {
		require.NoError(t, gz.Close())
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func readExtracted(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestForContentType(t *testing.T) {
	zipExtractor, err := ForContentType("application/zip")
	require.NoError(t, err)
	assert.IsType(t, &ZipExtractor{}, zipExtractor)

	tarExtractor, err := ForContentType("Application/X-TAR; charset=binary")
	require.NoError(t, err)
	assert.IsType(t, &TarExtractor{}, tarExtractor)
}

func TestForContentTypeUnsupported(t *testing.T) {
	_, err := ForContentType("application/pdf")

	var unsupported *domain.UnsupportedMediaTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 415, unsupported.StatusCode())
	// a missing extractor is not an invalid-input failure
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestZipExtract(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.zip")
	writeZip(t, pkg, map[string]string{
		"opus.xml":       "<import/>",
		"files/test.pdf": "%PDF-1.4 fake",
	})

	target := filepath.Join(dir, "extracted")
	require.NoError(t, (&ZipExtractor{}).Extract(pkg, target))

	assert.Equal(t, "<import/>", readExtracted(t, target, "opus.xml"))
	assert.Equal(t, "%PDF-1.4 fake", readExtracted(t, target, filepath.Join("files", "test.pdf")))
}

func TestZipExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.zip")
	writeZip(t, pkg, map[string]string{"../evil.txt": "nope"})

	err := (&ZipExtractor{}).Extract(pkg, filepath.Join(dir, "extracted"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes extraction directory")
}

func TestTarExtract(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.tar")
	writeTar(t, pkg, map[string]string{"opus.xml": "<import/>"}, false)

	target := filepath.Join(dir, "extracted")
	require.NoError(t, (&TarExtractor{}).Extract(pkg, target))

	assert.Equal(t, "<import/>", readExtracted(t, target, "opus.xml"))
}

func TestTarGzExtract(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.tar.gz")
	writeTar(t, pkg, map[string]string{"opus.xml": "<import/>"}, true)

	target := filepath.Join(dir, "extracted")
	require.NoError(t, (&TarExtractor{}).Extract(pkg, target))

	assert.Equal(t, "<import/>", readExtracted(t, target, "opus.xml"))
}

func TestUnpackGeneratesTargetPath(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.zip")
	writeZip(t, pkg, map[string]string{"opus.xml": "<import/>"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := Unpack(&ZipExtractor{}, pkg, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "package"), first)

	second, err := Unpack(&ZipExtractor{}, pkg, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "package_1"), second)

	third, err := Unpack(&ZipExtractor{}, pkg, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "package_2"), third)
}

func TestUnpackStripsCompoundArchiveSuffix(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pkg := filepath.Join(dir, "package.tar.gz")
	writeTar(t, pkg, map[string]string{"opus.xml": "<import/>"}, true)

	target, err := Unpack(&TarExtractor{}, pkg, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "package"), target)

	short := filepath.Join(dir, "short.tgz")
	writeTar(t, short, map[string]string{"opus.xml": "<import/>"}, true)

	target, err = Unpack(&TarExtractor{}, short, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "short"), target)
}

func TestUnpackUnreadableSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Unpack(&ZipExtractor{}, filepath.Join(t.TempDir(), "missing.zip"), "", logger)

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
