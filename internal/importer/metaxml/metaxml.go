// Package metaxml loads and validates the metadata file of an import
// package. The tree returned by Load is guaranteed to be well-formed and
// schema-valid; the mapper never sees records that failed validation.
package metaxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

// MetadataFileName is the fixed name of the metadata file at the root of an
// extracted package.
const MetadataFileName = "opus.xml"

// Metadata is a validated metadata tree. Records appear in document order.
type Metadata struct {
	doc *etree.Document
}

// Records returns the record elements in document order.
func (m *Metadata) Records() []*etree.Element {
	return m.doc.Root().ChildElements()
}

// Load parses and validates metadata XML. On failure it returns an
// *InvalidXMLError carrying every collected finding.
func Load(data []byte) (*Metadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &InvalidXMLError{Issues: []Issue{{
			Severity: SeverityFatal,
			Message:  "metadata file is empty",
		}}}
	}

	if issues := checkWellFormed(data); len(issues) > 0 {
		return nil, &InvalidXMLError{Issues: issues}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &InvalidXMLError{Issues: []Issue{{
			Severity: SeverityFatal,
			Message:  err.Error(),
		}}}
	}

	v := &validator{}
	v.validate(doc)
	if len(v.issues) > 0 {
		return nil, &InvalidXMLError{Issues: v.issues}
	}

	return &Metadata{doc: doc}, nil
}

// LoadFile reads and validates the metadata file at path.
func LoadFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	return Load(data)
}

// checkWellFormed runs the strict stdlib tokenizer over the document so that
// syntax errors are reported with line numbers. etree is more forgiving than
// the XML spec requires.
func checkWellFormed(data []byte) []Issue {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			issue := Issue{Severity: SeverityFatal, Message: err.Error()}
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				issue.Line = syntaxErr.Line
				issue.Message = syntaxErr.Msg
			}
			return []Issue{issue}
		}
	}
}
