package importer

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"repositum/internal/models"
)

// mapFiles attaches the files declared in a files group. A file that fails
// its checks is skipped with a log entry; the record itself is not affected.
func (im *Importer) mapFiles(node *etree.Element, doc *models.Document) {
	if im.ImportDir == "" {
		return
	}

	baseDir := strings.TrimSpace(node.SelectAttrValue("basedir", ""))

	for _, child := range node.ChildElements() {
		name := strings.TrimSpace(child.SelectAttrValue("name", ""))
		path := strings.TrimSpace(child.SelectAttrValue("path", ""))
		if name == "" && path == "" {
			im.logger().Warn("at least one of the file attributes name or path must be defined")
			continue
		}
		im.attachFile(doc, name, baseDir, path, child)
	}
}

// autoAttachFiles attaches every regular file at the root of the import
// directory except the metadata file. Used for single-record deposits
// without an explicit files group.
func (im *Importer) autoAttachFiles(doc *models.Document, metadataName string) {
	if im.ImportDir == "" {
		return
	}

	entries, err := os.ReadDir(im.ImportDir)
	if err != nil {
		im.logger().Warn("cannot read import directory", "dir", im.ImportDir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == metadataName {
			continue
		}
		im.attachFile(doc, entry.Name(), "", "", nil)
	}
}

// attachFile validates a single file and adds it to the document. node
// carries the optional metadata from the import XML and may be nil.
func (im *Importer) attachFile(doc *models.Document, name, baseDir, path string, node *etree.Element) {
	relative := path
	if relative == "" {
		relative = name
	}
	fullPath := filepath.Join(im.ImportDir, filepath.FromSlash(baseDir), filepath.FromSlash(relative))

	if !strings.HasPrefix(fullPath, filepath.Clean(im.ImportDir)+string(os.PathSeparator)) {
		im.logger().Warn("file reference escapes import directory", "path", relative)
		return
	}

	mimeType, err := detectMimeType(fullPath)
	if err != nil {
		im.logger().Warn("cannot read file, make sure it is contained in import package",
			"path", fullPath, "error", err)
		return
	}

	if !im.fileTypes().IsAllowed(filepath.Ext(fullPath), mimeType) {
		im.logger().Warn("MIME type of file is not allowed for import",
			"path", fullPath, "mimeType", mimeType)
		return
	}

	if node != nil {
		if ok, err := verifyChecksum(node, fullPath); err != nil || !ok {
			im.logger().Warn("checksum validation of file was not successful, check import package",
				"path", fullPath, "error", err)
			return
		}
	}

	file := models.File{
		SourcePath:         fullPath,
		MimeType:           mimeType,
		VisibleInOAI:       true,
		VisibleInFrontdoor: true,
	}
	if node != nil {
		applyFileAttributes(node, &file)
	}
	if file.Language == "" {
		file.Language = doc.Language
	}

	pathName := name
	if pathName == "" {
		pathName = fullPath
	}
	file.PathName = filepath.Base(pathName)

	if node != nil {
		if comment := node.SelectElement("comment"); comment != nil {
			file.Comment = strings.TrimSpace(comment.Text())
		}
	}

	doc.Files = append(doc.Files, file)
}

// applyFileAttributes copies the optional attributes of a file element onto
// the descriptor. displayName maps to the label shown in the frontend.
func applyFileAttributes(node *etree.Element, file *models.File) {
	if v := strings.TrimSpace(node.SelectAttrValue("language", "")); v != "" {
		file.Language = v
	}
	if v := strings.TrimSpace(node.SelectAttrValue("displayName", "")); v != "" {
		file.Label = v
	}
	if v := strings.TrimSpace(node.SelectAttrValue("visibleInFrontdoor", "")); v != "" {
		file.VisibleInFrontdoor = v == "true"
	}
	if v := strings.TrimSpace(node.SelectAttrValue("visibleInOai", "")); v != "" {
		file.VisibleInOAI = v == "true"
	}
	if v := strings.TrimSpace(node.SelectAttrValue("sortOrder", "")); v != "" {
		if order, err := strconv.Atoi(v); err == nil {
			file.SortOrder = order
		}
	}
}

// detectMimeType sniffs the content type from the first bytes of the file.
func detectMimeType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

var checksumAlgorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// verifyChecksum compares the digest declared in the file element against
// the actual file content. A file element without checksum always passes.
// The hex comparison ignores case.
func verifyChecksum(node *etree.Element, path string) (bool, error) {
	checksum := node.SelectElement("checksum")
	if checksum == nil {
		return true, nil
	}

	algo := strings.ToLower(strings.TrimSpace(checksum.SelectAttrValue("type", "")))
	newHash, ok := checksumAlgorithms[algo]
	if !ok {
		return false, fmt.Errorf("unsupported checksum algorithm %q", algo)
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}

	expected := strings.TrimSpace(checksum.Text())
	actual := hex.EncodeToString(h.Sum(nil))
	return strings.EqualFold(expected, actual), nil
}
