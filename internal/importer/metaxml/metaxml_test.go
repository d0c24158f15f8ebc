package metaxml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validXML = `<?xml version="1.0" encoding="UTF-8"?>
<import>
  <opusDocument language="eng" type="article">
    <titlesMain>
      <titleMain language="eng">This is a test document</titleMain>
    </titlesMain>
    <persons>
      <person role="author" firstName="Jane" lastName="Doe">
        <identifiers>
          <identifier type="orcid">0000-0002-1825-0097</identifier>
        </identifiers>
      </person>
    </persons>
    <dates>
      <date type="published" year="2024" monthDay="--05-17"/>
    </dates>
  </opusDocument>
</import>`

func TestLoadValidDocument(t *testing.T) {
	meta, err := Load([]byte(validXML))
	require.NoError(t, err)

	records := meta.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "opusDocument", records[0].Tag)
	assert.Equal(t, "eng", records[0].SelectAttrValue("language", ""))
}

func TestLoadRecordsKeepDocumentOrder(t *testing.T) {
	xml := `<import>
		<opusDocument type="article" oldId="first"><titlesMain><titleMain language="eng">A</titleMain></titlesMain></opusDocument>
		<opusDocument type="book" oldId="second"><titlesMain><titleMain language="eng">B</titleMain></titlesMain></opusDocument>
	</import>`

	meta, err := Load([]byte(xml))
	require.NoError(t, err)

	records := meta.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].SelectAttrValue("oldId", ""))
	assert.Equal(t, "second", records[1].SelectAttrValue("oldId", ""))
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := Load([]byte("   \n"))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "empty")
}

func TestLoadSyntaxErrorReportsLine(t *testing.T) {
	broken := "<import>\n<opusDocument type=\"article\">\n</import>"

	_, err := Load([]byte(broken))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Issues, 1)
	assert.Equal(t, SeverityFatal, invalid.Issues[0].Severity)
	assert.Equal(t, 3, invalid.Issues[0].Line)
}

func TestLoadCollectsAllSchemaViolations(t *testing.T) {
	xml := `<import>
		<opusDocument serverState="bogus" frobnicate="yes">
			<titles>
				<title type="chapter">No language</title>
			</titles>
			<dates>
				<date type="published" year="24"/>
			</dates>
		</opusDocument>
	</import>`

	_, err := Load([]byte(xml))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)

	messages := invalid.Error()
	assert.Contains(t, messages, `invalid serverState "bogus"`)
	assert.Contains(t, messages, `unknown attribute "frobnicate"`)
	assert.Contains(t, messages, `invalid type "chapter"`)
	assert.Contains(t, messages, `missing required attribute "language"`)
	assert.Contains(t, messages, `year must be four digits`)
	assert.GreaterOrEqual(t, len(invalid.Issues), 5)
}

func TestLoadRejectsWrongRoot(t *testing.T) {
	_, err := Load([]byte(`<export><opusDocument type="article"/></export>`))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "root element must be <import>")
}

func TestLoadRejectsUnknownGroup(t *testing.T) {
	xml := `<import>
		<opusDocument type="article">
			<gadgets><gadget/></gadgets>
		</opusDocument>
	</import>`

	_, err := Load([]byte(xml))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "unknown element <gadgets>")
}

func TestLoadFileWithoutNameOrPath(t *testing.T) {
	xml := `<import>
		<opusDocument type="article">
			<files><file language="eng"/></files>
		</opusDocument>
	</import>`

	_, err := Load([]byte(xml))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "name or path")
}

func TestLoadChecksumRequiresType(t *testing.T) {
	xml := `<import>
		<opusDocument type="article">
			<files><file name="a.pdf"><checksum>abc</checksum></file></files>
		</opusDocument>
	</import>`

	_, err := Load([]byte(xml))

	var invalid *InvalidXMLError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "checksum")
}

func TestLoadFileReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetadataFileName)
	require.NoError(t, os.WriteFile(path, []byte(validXML), 0o644))

	meta, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, meta.Records(), 1)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.xml"))

	require.Error(t, err)
	var invalid *InvalidXMLError
	assert.False(t, errors.As(err, &invalid))
}
