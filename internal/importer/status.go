package importer

import (
	"fmt"

	"repositum/internal/models"
)

// SkippedRecord identifies one abandoned record of a batch. OldID is the
// external identifier from the import XML; it is empty when the record
// carried none.
type SkippedRecord struct {
	OldID  string `json:"oldId,omitempty"`
	Reason string `json:"reason"`
}

// Status summarizes an import run. Records are listed in the order they
// appeared in the metadata.
type Status struct {
	Imported []*models.Document
	Skipped  []SkippedRecord
}

func (s *Status) addImported(doc *models.Document) {
	s.Imported = append(s.Imported, doc)
}

func (s *Status) addSkipped(oldID, reason string) {
	s.Skipped = append(s.Skipped, SkippedRecord{OldID: oldID, Reason: reason})
}

// ImportedCount returns the number of stored documents.
func (s *Status) ImportedCount() int { return len(s.Imported) }

// SkippedCount returns the number of abandoned records.
func (s *Status) SkippedCount() int { return len(s.Skipped) }

// NothingImported reports whether the run stored no document at all.
func (s *Status) NothingImported() bool { return len(s.Imported) == 0 }

// SkippedRecordsError signals that a batch finished with skipped records.
// The accompanying Status still describes what succeeded; interactive
// callers surface this error while deposit processing only logs it.
type SkippedRecordsError struct {
	Skipped []SkippedRecord
}

func (e *SkippedRecordsError) Error() string {
	return fmt.Sprintf("%d records were skipped during import", len(e.Skipped))
}
