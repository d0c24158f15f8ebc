package models

import (
	"strings"
	"time"
)

// Server states a document can be in. Imported documents default to
// StateUnpublished unless the metadata says otherwise.
const (
	StateUnpublished = "unpublished"
	StatePublished   = "published"
	StateRestricted  = "restricted"
	StateInProgress  = "inprogress"
	StateAudited     = "audited"
	StateDeleted     = "deleted"
)

// Title types used by the titles group. Main titles and abstracts have
// dedicated element groups in the import format.
const (
	TitleMain       = "main"
	TitleParent     = "parent"
	TitleSub        = "sub"
	TitleAdditional = "additional"
	TitleAbstract   = "abstract"
)

type Title struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Language string `json:"language,omitempty"`
}

type Subject struct {
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Language string `json:"language,omitempty"`
}

// SubjectTypeUncontrolled is the default type for free keywords.
const SubjectTypeUncontrolled = "uncontrolled"

type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Note struct {
	Message    string `json:"message"`
	Visibility string `json:"visibility,omitempty"`
}

type Enrichment struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SeriesLink associates a document with a series, ordered by Number.
type SeriesLink struct {
	SeriesID string `json:"series_id"`
	Number   string `json:"number,omitempty"`
}

// Document is the persisted record a metadata import maps onto.
// Scalar date fields are kept as strings in the form the import format
// delivers them (full dates "2006-01-02", year-only fields "2006").
type Document struct {
	ID          string `json:"id" db:"id"`
	Type        string `json:"type" db:"type"`
	Language    string `json:"language" db:"language"`
	ServerState string `json:"server_state" db:"server_state"`

	PageFirst     string `json:"page_first,omitempty"`
	PageLast      string `json:"page_last,omitempty"`
	PageNumber    string `json:"page_number,omitempty"`
	ArticleNumber string `json:"article_number,omitempty"`
	Edition       string `json:"edition,omitempty"`
	Issue         string `json:"issue,omitempty"`
	Volume        string `json:"volume,omitempty"`

	PublisherName           string `json:"publisher_name,omitempty"`
	PublisherPlace          string `json:"publisher_place,omitempty"`
	CreatingCorporation     string `json:"creating_corporation,omitempty"`
	ContributingCorporation string `json:"contributing_corporation,omitempty"`

	BelongsToBibliography bool `json:"belongs_to_bibliography"`

	PublishedDate      string `json:"published_date,omitempty"`
	PublishedYear      string `json:"published_year,omitempty"`
	CompletedDate      string `json:"completed_date,omitempty"`
	CompletedYear      string `json:"completed_year,omitempty"`
	ThesisDateAccepted string `json:"thesis_date_accepted,omitempty"`
	ThesisYearAccepted string `json:"thesis_year_accepted,omitempty"`
	EmbargoDate        string `json:"embargo_date,omitempty"`

	Titles           []Title      `json:"titles,omitempty"`
	Persons          []Person     `json:"persons,omitempty"`
	Subjects         []Subject    `json:"subjects,omitempty"`
	Identifiers      []Identifier `json:"identifiers,omitempty"`
	Notes            []Note       `json:"notes,omitempty"`
	Enrichments      []Enrichment `json:"enrichments,omitempty"`
	LicenceIDs       []string     `json:"licence_ids,omitempty"`
	CollectionIDs    []string     `json:"collection_ids,omitempty"`
	Series           []SeriesLink `json:"series,omitempty"`
	ThesisPublishers []string     `json:"thesis_publishers,omitempty"`
	ThesisGrantors   []string     `json:"thesis_grantors,omitempty"`
	Files            []File       `json:"files,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AddTitle appends a title of the given type.
func (d *Document) AddTitle(typ, value, language string) {
	d.Titles = append(d.Titles, Title{Type: typ, Value: value, Language: language})
}

// TitlesByType returns all titles of the given type in document order.
func (d *Document) TitlesByType(typ string) []Title {
	var titles []Title
	for _, t := range d.Titles {
		if t.Type == typ {
			titles = append(titles, t)
		}
	}
	return titles
}

// AddEnrichment appends a key/value annotation. Values are expected to be
// trimmed and non-empty by the caller.
func (d *Document) AddEnrichment(key, value string) {
	d.Enrichments = append(d.Enrichments, Enrichment{Key: key, Value: value})
}

// HasSubject reports whether a subject with the given value is present.
// An empty subjectType matches subjects of any type.
func (d *Document) HasSubject(value, subjectType string, caseSensitive bool) bool {
	for _, s := range d.Subjects {
		if subjectMatches(s, value, subjectType, caseSensitive) {
			return true
		}
	}
	return false
}

// RemoveSubject deletes all subjects matching value (and type, if given).
func (d *Document) RemoveSubject(value, subjectType string, caseSensitive bool) {
	kept := d.Subjects[:0]
	for _, s := range d.Subjects {
		if !subjectMatches(s, value, subjectType, caseSensitive) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		d.Subjects = nil
		return
	}
	d.Subjects = kept
}

func subjectMatches(s Subject, value, subjectType string, caseSensitive bool) bool {
	if subjectType != "" && s.Type != subjectType {
		return false
	}
	if caseSensitive {
		return s.Value == value
	}
	return strings.EqualFold(s.Value, value)
}

// HasCollection reports whether the document is already linked to the collection.
func (d *Document) HasCollection(id string) bool {
	for _, c := range d.CollectionIDs {
		if c == id {
			return true
		}
	}
	return false
}

// AddCollection links the document to a collection, ignoring duplicates.
func (d *Document) AddCollection(id string) {
	if !d.HasCollection(id) {
		d.CollectionIDs = append(d.CollectionIDs, id)
	}
}

// AddLicence links the document to a licence, ignoring duplicates.
func (d *Document) AddLicence(id string) {
	for _, l := range d.LicenceIDs {
		if l == id {
			return
		}
	}
	d.LicenceIDs = append(d.LicenceIDs, id)
}
