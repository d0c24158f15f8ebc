package importer

import "repositum/internal/models"

// Policy selects the behavior variants of an import run. Interactive
// administrative imports and unattended deposits share one importer and
// differ only in these switches.
type Policy struct {
	// TolerateMissingReferences logs and drops dangling references
	// (collections, series, licences, institutions, enrichment keys)
	// instead of abandoning the record.
	TolerateMissingReferences bool

	// AutoAttachSingleDoc attaches every top-level non-metadata file of the
	// extraction directory when the package holds exactly one record without
	// an explicit files group.
	AutoAttachSingleDoc bool

	// UpdateEnabled allows records carrying a docId attribute to update the
	// stored document. When disabled the docId is ignored and a new document
	// is created.
	UpdateEnabled bool

	// OnStored is called after each successfully stored document, nil for
	// none.
	OnStored func(doc *models.Document)
}

// AdministrativePolicy is used by interactive bulk imports: strict about
// dangling references, updates enabled, no auto-attach.
func AdministrativePolicy() Policy {
	return Policy{UpdateEnabled: true}
}

// DepositPolicy is used by unattended deposit uploads: tolerant about
// dangling references, no updates, loose files of a single-record package
// are attached automatically.
func DepositPolicy() Policy {
	return Policy{
		TolerateMissingReferences: true,
		AutoAttachSingleDoc:       true,
	}
}
