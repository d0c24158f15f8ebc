// Package importer maps validated metadata records onto documents and
// stores them. Records are processed independently: a failing record is
// skipped and reported, the rest of the batch continues.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"repositum/internal/importer/metaxml"
	"repositum/internal/importer/rules"
	"repositum/internal/models"
	"repositum/internal/repository"
)

// Importer runs one import batch. Store and Policy are required; everything
// else is optional.
type Importer struct {
	Store  *repository.Store
	Policy Policy

	// Logger receives progress and warnings, slog.Default when nil.
	Logger *slog.Logger

	// RejectLog receives one entry per skipped record, nil for none.
	RejectLog *slog.Logger

	// ImportDir is the extraction directory files are resolved against.
	// Without it file references are ignored.
	ImportDir string

	// KeepFields names the resettable field groups an update keeps.
	KeepFields []string

	// Enrichments are added to every imported document.
	Enrichments *AdditionalEnrichments

	// ImportCollectionID links every imported document to a collection,
	// empty for none.
	ImportCollectionID string

	// Rules are applied to every mapped document before storing.
	Rules *rules.Engine

	// RuleContext carries the request facts rule conditions match against.
	RuleContext rules.Context

	// FileTypes is the MIME allow-list for imported files, the built-in
	// default when nil.
	FileTypes *FileTypes
}

// Run processes all records of the metadata tree. The returned Status
// describes the whole batch; when records were skipped it is accompanied by
// a *SkippedRecordsError. Callers decide whether that error is surfaced or
// only logged.
func (im *Importer) Run(ctx context.Context, meta *metaxml.Metadata) (*Status, error) {
	if im.Store == nil {
		return nil, errors.New("importer requires a store")
	}
	if err := im.validateKeepFields(); err != nil {
		return nil, err
	}

	records := meta.Records()
	singleDoc := len(records) == 1

	status := &Status{}
	for i, rec := range records {
		oldID := strings.TrimSpace(rec.SelectAttrValue("oldId", ""))
		label := recordLabel(oldID, i)
		im.logger().Debug("start processing of record", "record", label)

		doc, err := im.prepareDocument(ctx, rec)
		if err != nil {
			im.skip(status, oldID, label, err)
			continue
		}

		if err := im.mapRecord(ctx, rec, doc, singleDoc); err != nil {
			im.skip(status, oldID, label, fmt.Errorf("error while processing document: %w", err))
			continue
		}

		im.Enrichments.Each(func(key, value string) {
			addEnrichment(doc, key, value)
		})

		if im.ImportCollectionID != "" {
			doc.AddCollection(im.ImportCollectionID)
		}

		if err := im.Rules.Apply(doc, &im.RuleContext); err != nil {
			im.skip(status, oldID, label, err)
			continue
		}

		if err := im.storeDocument(ctx, doc); err != nil {
			im.skip(status, oldID, label, fmt.Errorf("error while saving imported document: %w", err))
			continue
		}

		status.addImported(doc)
		if im.Policy.OnStored != nil {
			im.Policy.OnStored(doc)
		}
		im.logger().Debug("record imported", "record", label, "id", doc.ID)
	}

	if status.SkippedCount() == 0 {
		im.logger().Info("import finished successfully", "imported", status.ImportedCount())
		return status, nil
	}

	im.logger().Info("import finished",
		"imported", status.ImportedCount(),
		"skipped", status.SkippedCount())
	return status, &SkippedRecordsError{Skipped: status.Skipped}
}

// prepareDocument returns the document a record maps onto: the reset stored
// document for an update, a fresh unpublished document otherwise.
func (im *Importer) prepareDocument(ctx context.Context, rec *etree.Element) (*models.Document, error) {
	docID := strings.TrimSpace(rec.SelectAttrValue("docId", ""))

	if docID != "" && im.Policy.UpdateEnabled {
		// existing files attached to the document are kept as they are
		doc, err := im.Store.Documents.Get(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("could not load document %s: %w", docID, err)
		}
		im.resetDocument(doc)
		return doc, nil
	}

	if docID != "" {
		im.logger().Debug("ignore value of attribute docId", "docId", docID)
	}

	// serverState is optional, new documents default to unpublished
	return &models.Document{ServerState: models.StateUnpublished}, nil
}

// resetDocument clears all resettable field groups except the configured
// keep set, so the new metadata fully replaces the old values.
func (im *Importer) resetDocument(doc *models.Document) {
	keep := make(map[string]bool, len(im.KeepFields))
	for _, field := range im.KeepFields {
		keep[field] = true
	}
	for _, field := range models.ResettableFields() {
		if !keep[field] {
			doc.ClearField(field)
		}
	}
}

func (im *Importer) validateKeepFields() error {
	known := make(map[string]bool)
	for _, field := range models.ResettableFields() {
		known[field] = true
	}
	for _, field := range im.KeepFields {
		if !known[field] {
			return fmt.Errorf("unknown field %q in update keep list", field)
		}
	}
	return nil
}

func (im *Importer) mapRecord(ctx context.Context, rec *etree.Element, doc *models.Document, singleDoc bool) error {
	if err := im.mapAttributes(rec, doc); err != nil {
		return err
	}

	filesAdded, err := im.mapElements(ctx, rec, doc)
	if err != nil {
		return err
	}

	if !filesAdded && singleDoc && im.Policy.AutoAttachSingleDoc {
		im.autoAttachFiles(doc, metaxml.MetadataFileName)
	}
	return nil
}

func (im *Importer) storeDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID != "" {
		return im.Store.Documents.Update(ctx, doc)
	}
	return im.Store.Documents.Create(ctx, doc)
}

// missingReference handles a dangling reference according to policy:
// tolerant imports log and drop the reference, strict imports fail the
// record.
func (im *Importer) missingReference(msg string) error {
	if im.Policy.TolerateMissingReferences {
		im.logger().Warn(msg)
		return nil
	}
	return errors.New(msg)
}

func (im *Importer) skip(status *Status, oldID, label string, err error) {
	im.logger().Warn("record skipped", "record", label, "error", err)
	if im.RejectLog != nil {
		im.RejectLog.Error(oldID, "reason", err.Error())
	}
	status.addSkipped(oldID, err.Error())
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}

func (im *Importer) fileTypes() *FileTypes {
	if im.FileTypes != nil {
		return im.FileTypes
	}
	return defaultFileTypes
}

var defaultFileTypes = DefaultFileTypes()

func recordLabel(oldID string, index int) string {
	if oldID != "" {
		return "#" + oldID
	}
	return fmt.Sprintf("record %d", index+1)
}
