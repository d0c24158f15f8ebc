package models

// resettableFields names every field group that a metadata update replaces.
// Updating a document clears these (minus a configured keep set) before the
// new metadata is mapped, so repeated imports of the same record do not
// accumulate duplicate titles, persons or subjects.
var resettableFields = []string{
	"TitleMain",
	"TitleAbstract",
	"TitleParent",
	"TitleSub",
	"TitleAdditional",
	"Identifier",
	"Note",
	"Enrichment",
	"Licence",
	"Person",
	"Series",
	"Collection",
	"Subject",
	"ThesisPublisher",
	"ThesisGrantor",
	"PublishedDate",
	"PublishedYear",
	"CompletedDate",
	"CompletedYear",
	"ThesisDateAccepted",
	"ThesisYearAccepted",
	"EmbargoDate",
	"ContributingCorporation",
	"CreatingCorporation",
	"Edition",
	"Issue",
	"Language",
	"PageFirst",
	"PageLast",
	"PageNumber",
	"ArticleNumber",
	"PublisherName",
	"PublisherPlace",
	"Type",
	"Volume",
	"BelongsToBibliography",
	"ServerState",
}

// ResettableFields returns the names of all field groups cleared on update.
func ResettableFields() []string {
	fields := make([]string, len(resettableFields))
	copy(fields, resettableFields)
	return fields
}

// ClearField resets a single field group to its zero value. It returns false
// for unknown field names so callers can fail fast on configuration typos.
func (d *Document) ClearField(name string) bool {
	switch name {
	case "TitleMain":
		d.clearTitles(TitleMain)
	case "TitleAbstract":
		d.clearTitles(TitleAbstract)
	case "TitleParent":
		d.clearTitles(TitleParent)
	case "TitleSub":
		d.clearTitles(TitleSub)
	case "TitleAdditional":
		d.clearTitles(TitleAdditional)
	case "Identifier":
		d.Identifiers = nil
	case "Note":
		d.Notes = nil
	case "Enrichment":
		d.Enrichments = nil
	case "Licence":
		d.LicenceIDs = nil
	case "Person":
		d.Persons = nil
	case "Series":
		d.Series = nil
	case "Collection":
		d.CollectionIDs = nil
	case "Subject":
		d.Subjects = nil
	case "ThesisPublisher":
		d.ThesisPublishers = nil
	case "ThesisGrantor":
		d.ThesisGrantors = nil
	case "PublishedDate":
		d.PublishedDate = ""
	case "PublishedYear":
		d.PublishedYear = ""
	case "CompletedDate":
		d.CompletedDate = ""
	case "CompletedYear":
		d.CompletedYear = ""
	case "ThesisDateAccepted":
		d.ThesisDateAccepted = ""
	case "ThesisYearAccepted":
		d.ThesisYearAccepted = ""
	case "EmbargoDate":
		d.EmbargoDate = ""
	case "ContributingCorporation":
		d.ContributingCorporation = ""
	case "CreatingCorporation":
		d.CreatingCorporation = ""
	case "Edition":
		d.Edition = ""
	case "Issue":
		d.Issue = ""
	case "Language":
		d.Language = ""
	case "PageFirst":
		d.PageFirst = ""
	case "PageLast":
		d.PageLast = ""
	case "PageNumber":
		d.PageNumber = ""
	case "ArticleNumber":
		d.ArticleNumber = ""
	case "PublisherName":
		d.PublisherName = ""
	case "PublisherPlace":
		d.PublisherPlace = ""
	case "Type":
		d.Type = ""
	case "Volume":
		d.Volume = ""
	case "BelongsToBibliography":
		d.BelongsToBibliography = false
	case "ServerState":
		d.ServerState = ""
	default:
		return false
	}
	return true
}

func (d *Document) clearTitles(typ string) {
	kept := d.Titles[:0]
	for _, t := range d.Titles {
		if t.Type != typ {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		d.Titles = nil
		return
	}
	d.Titles = kept
}
