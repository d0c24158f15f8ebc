package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repositum/internal/importer/metaxml"
	"repositum/internal/importer/rules"
	"repositum/internal/models"
	"repositum/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadMetadata(t *testing.T, xml string) *metaxml.Metadata {
	t.Helper()

	meta, err := metaxml.Load([]byte(xml))
	require.NoError(t, err)
	return meta
}

func newImporter(store *memory.Store, policy Policy) *Importer {
	return &Importer{
		Store:  store.Repositories(),
		Policy: policy,
		Logger: discardLogger(),
	}
}

func TestImportSingleRecord(t *testing.T) {
	store := memory.NewStore()
	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article">
			<titlesMain>
				<titleMain language="eng">This is a test document</titleMain>
			</titlesMain>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	require.Len(t, status.Imported, 1)

	doc := status.Imported[0]
	assert.Equal(t, "eng", doc.Language)
	assert.Equal(t, "article", doc.Type)
	assert.Equal(t, models.StateUnpublished, doc.ServerState)

	titles := doc.TitlesByType(models.TitleMain)
	require.Len(t, titles, 1)
	assert.Equal(t, "This is a test document", titles[0].Value)
	assert.Equal(t, "eng", titles[0].Language)

	assert.Equal(t, 1, store.DocumentCount())
}

func TestImportMapsAttributesAndGroups(t *testing.T) {
	store := memory.NewStore()
	licence := store.AddLicence(&models.Licence{Name: "CC BY 4.0"})
	collection := store.AddCollection(&models.Collection{Name: "Articles"})
	series := store.AddSeries(&models.Series{Title: "Reports"})
	store.AddEnrichmentKey("funding")

	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument language="deu" type="doctoralthesis" serverState="published"
			pageFirst="1" pageLast="12" volume="3" issue="2" edition="2nd"
			publisherName="ACME" publisherPlace="Berlin"
			creatingCorporation="Lab A" contributingCorporation="Lab B"
			belongsToBibliography="true">
			<titlesMain>
				<titleMain language="deu">Haupttitel</titleMain>
			</titlesMain>
			<titles>
				<title language="eng" type="sub">Subtitle</title>
			</titles>
			<abstracts>
				<abstract language="eng">An abstract.</abstract>
			</abstracts>
			<keywords>
				<keyword language="eng">physics</keyword>
				<keyword language="deu" type="swd">Physik</keyword>
			</keywords>
			<identifiers>
				<identifier type="doi">10.1000/demo</identifier>
			</identifiers>
			<notes>
				<note visibility="private">internal remark</note>
			</notes>
			<collections>
				<collection id="`+collection.ID+`"/>
			</collections>
			<series>
				<seriesItem id="`+series.ID+`" number="7"/>
			</series>
			<enrichments>
				<enrichment key="funding">DFG</enrichment>
			</enrichments>
			<licences>
				<licence id="`+licence.ID+`"/>
			</licences>
			<dates>
				<date type="published" year="2023" monthDay="--04-01"/>
				<date type="completed" year="2022"/>
			</dates>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	require.Len(t, status.Imported, 1)

	doc := status.Imported[0]
	assert.Equal(t, "published", doc.ServerState)
	assert.Equal(t, "1", doc.PageFirst)
	assert.Equal(t, "12", doc.PageLast)
	assert.Equal(t, "3", doc.Volume)
	assert.Equal(t, "2", doc.Issue)
	assert.Equal(t, "2nd", doc.Edition)
	assert.Equal(t, "ACME", doc.PublisherName)
	assert.Equal(t, "Berlin", doc.PublisherPlace)
	assert.Equal(t, "Lab A", doc.CreatingCorporation)
	assert.Equal(t, "Lab B", doc.ContributingCorporation)
	assert.True(t, doc.BelongsToBibliography)

	assert.Len(t, doc.TitlesByType(models.TitleSub), 1)
	assert.Len(t, doc.TitlesByType(models.TitleAbstract), 1)

	require.Len(t, doc.Subjects, 2)
	assert.Equal(t, models.SubjectTypeUncontrolled, doc.Subjects[0].Type)
	assert.Equal(t, "swd", doc.Subjects[1].Type)

	require.Len(t, doc.Identifiers, 1)
	assert.Equal(t, "doi", doc.Identifiers[0].Type)

	require.Len(t, doc.Notes, 1)
	assert.Equal(t, "private", doc.Notes[0].Visibility)

	assert.Equal(t, []string{collection.ID}, doc.CollectionIDs)
	require.Len(t, doc.Series, 1)
	assert.Equal(t, "7", doc.Series[0].Number)

	require.Len(t, doc.Enrichments, 1)
	assert.Equal(t, "funding", doc.Enrichments[0].Key)

	assert.Equal(t, []string{licence.ID}, doc.LicenceIDs)

	assert.Equal(t, "2023-04-01", doc.PublishedDate)
	assert.Empty(t, doc.PublishedYear)
	assert.Equal(t, "2022", doc.CompletedYear)
	assert.Empty(t, doc.CompletedDate)
}

func TestImportPersonsWithIdentifiers(t *testing.T) {
	store := memory.NewStore()
	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="article">
			<persons>
				<person role="author" firstName="Jane" lastName="Doe"
					academicTitle="Dr." email="jane@example.org" allowEmailContact="true">
					<identifiers>
						<identifier type="orcid">0000-0002-1825-0097</identifier>
						<identifier type="intern">internal-42</identifier>
						<identifier type="misc">ignored-duplicate</identifier>
					</identifiers>
				</person>
				<person role="advisor" firstName="John" lastName="Smith"/>
			</persons>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	require.Len(t, doc.Persons, 2)

	author := doc.Persons[0]
	assert.Equal(t, models.RoleAuthor, author.Role)
	assert.Equal(t, "Dr.", author.AcademicTitle)
	assert.True(t, author.AllowEmailContact)

	// intern is stored as misc, the second misc value is discarded
	require.Len(t, author.Identifiers, 2)
	assert.Equal(t, "orcid", author.Identifiers[0].Type)
	assert.Equal(t, "misc", author.Identifiers[1].Type)
	assert.Equal(t, "internal-42", author.Identifiers[1].Value)

	assert.Equal(t, models.RoleAdvisor, doc.Persons[1].Role)
	assert.False(t, doc.Persons[1].AllowEmailContact)
}

func TestImportInstitutions(t *testing.T) {
	store := memory.NewStore()
	inst := store.AddInstitute(&models.Institute{Name: "University", IsPublisher: true, IsGrantor: true})

	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="doctoralthesis">
			<dnbInstitutions>
				<dnbInstitution id="`+inst.ID+`" role="publisher"/>
				<dnbInstitution id="`+inst.ID+`" role="grantor"/>
			</dnbInstitutions>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	assert.Equal(t, []string{inst.ID}, doc.ThesisPublishers)
	assert.Equal(t, []string{inst.ID}, doc.ThesisGrantors)
}

func TestImportInstitutionRoleNotSupportedFailsRecord(t *testing.T) {
	store := memory.NewStore()
	inst := store.AddInstitute(&models.Institute{Name: "University", IsPublisher: true})

	// even the tolerant deposit policy does not excuse a role mismatch
	im := newImporter(store, DepositPolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="doctoralthesis" oldId="rec1">
			<dnbInstitutions>
				<dnbInstitution id="`+inst.ID+`" role="grantor"/>
			</dnbInstitutions>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)

	var skipped *SkippedRecordsError
	require.ErrorAs(t, err, &skipped)
	assert.True(t, status.NothingImported())
	require.Len(t, status.Skipped, 1)
	assert.Equal(t, "rec1", status.Skipped[0].OldID)
	assert.Contains(t, status.Skipped[0].Reason, "not allowed")
}

func TestImportEmbargoDateRequiresMonthDay(t *testing.T) {
	store := memory.NewStore()
	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="article" oldId="full">
			<dates>
				<date type="embargo" year="2030" monthDay="--06-15"/>
			</dates>
		</opusDocument>
		<opusDocument type="article" oldId="yearonly">
			<dates>
				<date type="embargo" year="2030"/>
			</dates>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)

	var skipped *SkippedRecordsError
	require.ErrorAs(t, err, &skipped)

	require.Len(t, status.Imported, 1)
	assert.Equal(t, "2030-06-15", status.Imported[0].EmbargoDate)

	require.Len(t, status.Skipped, 1)
	assert.Equal(t, "yearonly", status.Skipped[0].OldID)
	assert.Contains(t, status.Skipped[0].Reason, "monthDay")
}

func TestImportDanglingReferenceStrict(t *testing.T) {
	store := memory.NewStore()
	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="article" oldId="rec1">
			<collections>
				<collection id="does-not-exist"/>
			</collections>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)

	var skipped *SkippedRecordsError
	require.ErrorAs(t, err, &skipped)
	assert.True(t, status.NothingImported())
	assert.Equal(t, 0, store.DocumentCount())
}

func TestImportDanglingReferenceTolerant(t *testing.T) {
	store := memory.NewStore()
	im := newImporter(store, DepositPolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="article">
			<collections>
				<collection id="does-not-exist"/>
			</collections>
			<licences>
				<licence id="also-missing"/>
			</licences>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	assert.Empty(t, doc.CollectionIDs)
	assert.Empty(t, doc.LicenceIDs)
}

func TestImportEnrichmentWithEmptyValueDropped(t *testing.T) {
	store := memory.NewStore()
	store.AddEnrichmentKey("funding")
	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument type="article">
			<enrichments>
				<enrichment key="funding">   </enrichment>
			</enrichments>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	assert.Empty(t, status.Imported[0].Enrichments)
}

func TestImportUpdateResetsFields(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()

	existing := &models.Document{
		Type:          "article",
		Language:      "deu",
		PublishedYear: "2001",
		Subjects:      []models.Subject{{Value: "old keyword", Type: models.SubjectTypeUncontrolled}},
	}
	existing.AddTitle(models.TitleMain, "Old title", "deu")
	require.NoError(t, repos.Documents.Create(context.Background(), existing))

	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument docId="`+existing.ID+`" language="eng" type="article">
			<titlesMain>
				<titleMain language="eng">New title</titleMain>
			</titlesMain>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	require.Len(t, status.Imported, 1)

	stored, err := repos.Documents.Get(context.Background(), existing.ID)
	require.NoError(t, err)

	titles := stored.TitlesByType(models.TitleMain)
	require.Len(t, titles, 1)
	assert.Equal(t, "New title", titles[0].Value)
	assert.Equal(t, "eng", stored.Language)
	assert.Empty(t, stored.PublishedYear)
	assert.Empty(t, stored.Subjects)
	assert.Equal(t, 1, store.DocumentCount())
}

func TestImportUpdateKeepsConfiguredFields(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()

	existing := &models.Document{
		Type:          "article",
		PublishedYear: "2001",
		Subjects:      []models.Subject{{Value: "kept keyword", Type: models.SubjectTypeUncontrolled}},
	}
	require.NoError(t, repos.Documents.Create(context.Background(), existing))

	im := newImporter(store, AdministrativePolicy())
	im.KeepFields = []string{"Subject", "PublishedYear"}

	meta := loadMetadata(t, `<import>
		<opusDocument docId="`+existing.ID+`" language="eng" type="article"/>
	</import>`)

	_, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	stored, err := repos.Documents.Get(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "2001", stored.PublishedYear)
	require.Len(t, stored.Subjects, 1)
	assert.Equal(t, "kept keyword", stored.Subjects[0].Value)
}

func TestImportUpdateIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()

	existing := &models.Document{Type: "article"}
	require.NoError(t, repos.Documents.Create(context.Background(), existing))

	xml := `<import>
		<opusDocument docId="` + existing.ID + `" language="eng" type="article">
			<titlesMain>
				<titleMain language="eng">Stable title</titleMain>
			</titlesMain>
			<keywords>
				<keyword language="eng">physics</keyword>
			</keywords>
		</opusDocument>
	</import>`

	im := newImporter(store, AdministrativePolicy())

	for i := 0; i < 2; i++ {
		_, err := im.Run(context.Background(), loadMetadata(t, xml))
		require.NoError(t, err)
	}

	stored, err := repos.Documents.Get(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Len(t, stored.TitlesByType(models.TitleMain), 1)
	assert.Len(t, stored.Subjects, 1)
	assert.Equal(t, 1, store.DocumentCount())
}

func TestImportMissingUpdateTargetSkipsRecordOnly(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()

	existing := &models.Document{Type: "article"}
	require.NoError(t, repos.Documents.Create(context.Background(), existing))

	im := newImporter(store, AdministrativePolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument docId="`+existing.ID+`" language="eng" type="article"/>
		<opusDocument docId="no-such-document" oldId="gone" language="eng" type="article"/>
	</import>`)

	status, err := im.Run(context.Background(), meta)

	var skipped *SkippedRecordsError
	require.ErrorAs(t, err, &skipped)
	assert.Equal(t, 1, status.ImportedCount())
	require.Len(t, status.Skipped, 1)
	assert.Equal(t, "gone", status.Skipped[0].OldID)
	assert.Len(t, skipped.Skipped, 1)
}

func TestImportDocIdIgnoredWhenUpdatesDisabled(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()

	existing := &models.Document{Type: "article", Language: "deu"}
	require.NoError(t, repos.Documents.Create(context.Background(), existing))

	im := newImporter(store, DepositPolicy())

	meta := loadMetadata(t, `<import>
		<opusDocument docId="`+existing.ID+`" language="eng" type="article"/>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	assert.NotEqual(t, existing.ID, status.Imported[0].ID)
	assert.Equal(t, 2, store.DocumentCount())

	untouched, err := repos.Documents.Get(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "deu", untouched.Language)
}

func TestImportAdditionalEnrichments(t *testing.T) {
	store := memory.NewStore()
	for _, key := range []string{
		EnrichmentImportUser, EnrichmentImportDate, EnrichmentImportFile,
		EnrichmentImportChecksum, EnrichmentSource,
	} {
		store.AddEnrichmentKey(key)
	}

	enrichments, err := NewAdditionalEnrichments(context.Background(), store.Repositories(), "sword")
	require.NoError(t, err)
	enrichments.AddUser("depositor")
	enrichments.AddFile("package.zip")
	enrichments.AddChecksum("abc123")

	im := newImporter(store, DepositPolicy())
	im.Enrichments = enrichments

	meta := loadMetadata(t, `<import><opusDocument type="article"/></import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	values := make(map[string]string)
	for _, e := range doc.Enrichments {
		values[e.Key] = e.Value
	}
	assert.Equal(t, "sword", values[EnrichmentSource])
	assert.Equal(t, "depositor", values[EnrichmentImportUser])
	assert.Equal(t, "package.zip", values[EnrichmentImportFile])
	assert.Equal(t, "abc123", values[EnrichmentImportChecksum])
	assert.NotEmpty(t, values[EnrichmentImportDate])
}

func TestImportEnrichmentKeysMissingFailsSetup(t *testing.T) {
	store := memory.NewStore()

	_, err := NewAdditionalEnrichments(context.Background(), store.Repositories(), "sword")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestImportCollectionAndRules(t *testing.T) {
	store := memory.NewStore()
	importCollection := store.AddCollection(&models.Collection{Name: "Deposits"})
	target := store.AddCollection(&models.Collection{Name: "Open Access"})

	loader := &rules.Loader{Store: store.Repositories(), Logger: discardLogger()}
	engine, err := loader.Load(context.Background(), []rules.Config{{
		Name: "ccby",
		Type: "addCollection",
		Options: map[string]any{
			"collection": map[string]any{"id": target.ID},
			"condition": map[string]any{
				"keyword": map[string]any{"value": "ccby", "remove": true},
			},
		},
	}})
	require.NoError(t, err)

	im := newImporter(store, DepositPolicy())
	im.ImportCollectionID = importCollection.ID
	im.Rules = engine

	meta := loadMetadata(t, `<import>
		<opusDocument type="article">
			<keywords>
				<keyword language="eng">ccby</keyword>
			</keywords>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	assert.True(t, doc.HasCollection(importCollection.ID))
	assert.True(t, doc.HasCollection(target.ID))
	assert.Empty(t, doc.Subjects)
}

func TestImportOnStoredCallback(t *testing.T) {
	store := memory.NewStore()

	var seen []*models.Document
	policy := DepositPolicy()
	policy.OnStored = func(doc *models.Document) { seen = append(seen, doc) }

	im := newImporter(store, policy)

	meta := loadMetadata(t, `<import>
		<opusDocument type="article"/>
		<opusDocument type="book"/>
	</import>`)

	_, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestImportUnknownKeepFieldFailsFast(t *testing.T) {
	im := newImporter(memory.NewStore(), AdministrativePolicy())
	im.KeepFields = []string{"Subject", "NoSuchField"}

	meta := loadMetadata(t, `<import><opusDocument type="article"/></import>`)

	_, err := im.Run(context.Background(), meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchField")
}

func writeImportFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportDeclaredFiles(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	writeImportFile(t, dir, "opus.xml", "<import/>")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "texts"), 0o755))
	writeImportFile(t, filepath.Join(dir, "texts"), "fulltext.pdf", "%PDF-1.4 test content")

	im := newImporter(store, AdministrativePolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article">
			<files basedir="texts">
				<file name="fulltext.pdf" displayName="Fulltext" sortOrder="2" visibleInOai="false">
					<comment>main text</comment>
				</file>
			</files>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	require.Len(t, doc.Files, 1)
	file := doc.Files[0]
	assert.Equal(t, "fulltext.pdf", file.PathName)
	assert.Equal(t, "Fulltext", file.Label)
	assert.Equal(t, "main text", file.Comment)
	assert.Equal(t, 2, file.SortOrder)
	assert.False(t, file.VisibleInOAI)
	assert.True(t, file.VisibleInFrontdoor)
	assert.Equal(t, "application/pdf", file.MimeType)
	// language falls back to the document language
	assert.Equal(t, "eng", file.Language)
}

func TestImportFileChecksums(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	content := "%PDF-1.4 good content"
	writeImportFile(t, dir, "good.pdf", content)
	writeImportFile(t, dir, "bad.pdf", "%PDF-1.4 tampered content")

	digest := sha256.Sum256([]byte(content))
	goodChecksum := hex.EncodeToString(digest[:])

	im := newImporter(store, AdministrativePolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article">
			<files>
				<file name="good.pdf">
					<checksum type="sha256">`+goodChecksum+`</checksum>
				</file>
				<file name="bad.pdf">
					<checksum type="sha256">`+goodChecksum+`</checksum>
				</file>
			</files>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	// the mismatching file is skipped, the record is stored normally
	doc := status.Imported[0]
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "good.pdf", doc.Files[0].PathName)
}

func TestImportDisallowedMimeTypeSkipsFile(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	// content sniffs as HTML but the extension claims PDF
	writeImportFile(t, dir, "fake.pdf", "<html><body>not a pdf</body></html>")

	im := newImporter(store, AdministrativePolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article">
			<files>
				<file name="fake.pdf"/>
			</files>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)
	assert.Empty(t, status.Imported[0].Files)
}

func TestImportAutoAttachSingleDoc(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	writeImportFile(t, dir, "opus.xml", "<import/>")
	writeImportFile(t, dir, "a.pdf", "%PDF-1.4 first")
	writeImportFile(t, dir, "b.txt", "plain text fulltext")

	im := newImporter(store, DepositPolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article"/>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	require.Len(t, doc.Files, 2)
	names := []string{doc.Files[0].PathName, doc.Files[1].PathName}
	assert.ElementsMatch(t, []string{"a.pdf", "b.txt"}, names)
}

func TestImportNoAutoAttachWithFilesGroup(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	writeImportFile(t, dir, "opus.xml", "<import/>")
	writeImportFile(t, dir, "declared.pdf", "%PDF-1.4 declared")
	writeImportFile(t, dir, "loose.pdf", "%PDF-1.4 loose")

	im := newImporter(store, DepositPolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article">
			<files>
				<file name="declared.pdf"/>
			</files>
		</opusDocument>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	doc := status.Imported[0]
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "declared.pdf", doc.Files[0].PathName)
}

func TestImportNoAutoAttachForMultiRecordPackage(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	writeImportFile(t, dir, "opus.xml", "<import/>")
	writeImportFile(t, dir, "loose.pdf", "%PDF-1.4 loose")

	im := newImporter(store, DepositPolicy())
	im.ImportDir = dir

	meta := loadMetadata(t, `<import>
		<opusDocument language="eng" type="article"/>
		<opusDocument language="eng" type="book"/>
	</import>`)

	status, err := im.Run(context.Background(), meta)
	require.NoError(t, err)

	for _, doc := range status.Imported {
		assert.Empty(t, doc.Files)
	}
}
