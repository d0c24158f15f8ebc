package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"repositum/internal/domain"
	"repositum/internal/models"
)

// attributeSetters maps record attributes to typed document setters. The
// control attributes oldId and docId are consumed before mapping and have no
// entry here.
var attributeSetters = map[string]func(doc *models.Document, value string){
	"language":                func(d *models.Document, v string) { d.Language = v },
	"type":                    func(d *models.Document, v string) { d.Type = v },
	"serverState":             func(d *models.Document, v string) { d.ServerState = v },
	"pageFirst":               func(d *models.Document, v string) { d.PageFirst = v },
	"pageLast":                func(d *models.Document, v string) { d.PageLast = v },
	"pageNumber":              func(d *models.Document, v string) { d.PageNumber = v },
	"articleNumber":           func(d *models.Document, v string) { d.ArticleNumber = v },
	"edition":                 func(d *models.Document, v string) { d.Edition = v },
	"issue":                   func(d *models.Document, v string) { d.Issue = v },
	"volume":                  func(d *models.Document, v string) { d.Volume = v },
	"publisherName":           func(d *models.Document, v string) { d.PublisherName = v },
	"publisherPlace":          func(d *models.Document, v string) { d.PublisherPlace = v },
	"creatingCorporation":     func(d *models.Document, v string) { d.CreatingCorporation = v },
	"contributingCorporation": func(d *models.Document, v string) { d.ContributingCorporation = v },
	"belongsToBibliography":   func(d *models.Document, v string) { d.BelongsToBibliography = v == "true" },
}

// titleTypesByTag maps the type attribute of a title element to the stored
// title type.
var titleTypesByTag = map[string]string{
	"parent":     models.TitleParent,
	"sub":        models.TitleSub,
	"additional": models.TitleAdditional,
}

// mapAttributes copies the record attributes onto the document. Unknown
// attributes are a mapping error; validation normally catches them first.
func (im *Importer) mapAttributes(rec *etree.Element, doc *models.Document) error {
	for _, attr := range rec.Attr {
		if attr.Key == "oldId" || attr.Key == "docId" {
			continue
		}
		setter, ok := attributeSetters[attr.Key]
		if !ok {
			return fmt.Errorf("unknown document attribute %q", attr.Key)
		}
		setter(doc, strings.TrimSpace(attr.Value))
	}
	return nil
}

// mapElements dispatches the child groups of a record in document order. It
// reports whether a files group was present.
func (im *Importer) mapElements(ctx context.Context, rec *etree.Element, doc *models.Document) (bool, error) {
	filesAdded := false

	for _, node := range rec.ChildElements() {
		var err error
		switch node.Tag {
		case "titlesMain":
			mapTitleGroup(node, doc, models.TitleMain)
		case "titles":
			mapTitles(node, doc)
		case "abstracts":
			mapTitleGroup(node, doc, models.TitleAbstract)
		case "persons":
			im.mapPersons(node, doc)
		case "keywords":
			mapKeywords(node, doc)
		case "dnbInstitutions":
			err = im.mapInstitutions(ctx, node, doc)
		case "identifiers":
			mapIdentifiers(node, doc)
		case "notes":
			mapNotes(node, doc)
		case "collections":
			err = im.mapCollections(ctx, node, doc)
		case "series":
			err = im.mapSeries(ctx, node, doc)
		case "enrichments":
			err = im.mapEnrichments(ctx, node, doc)
		case "licences":
			err = im.mapLicences(ctx, node, doc)
		case "dates":
			err = mapDates(node, doc)
		case "files":
			im.mapFiles(node, doc)
			filesAdded = true
		default:
			err = fmt.Errorf("unknown element <%s>", node.Tag)
		}
		if err != nil {
			return filesAdded, err
		}
	}
	return filesAdded, nil
}

func mapTitleGroup(node *etree.Element, doc *models.Document, titleType string) {
	for _, child := range node.ChildElements() {
		doc.AddTitle(titleType,
			strings.TrimSpace(child.Text()),
			strings.TrimSpace(child.SelectAttrValue("language", "")))
	}
}

func mapTitles(node *etree.Element, doc *models.Document) {
	for _, child := range node.ChildElements() {
		titleType := titleTypesByTag[child.SelectAttrValue("type", "")]
		doc.AddTitle(titleType,
			strings.TrimSpace(child.Text()),
			strings.TrimSpace(child.SelectAttrValue("language", "")))
	}
}

func (im *Importer) mapPersons(node *etree.Element, doc *models.Document) {
	for _, child := range node.ChildElements() {
		person := models.Person{
			Role:          child.SelectAttrValue("role", ""),
			FirstName:     strings.TrimSpace(child.SelectAttrValue("firstName", "")),
			LastName:      strings.TrimSpace(child.SelectAttrValue("lastName", "")),
			AcademicTitle: strings.TrimSpace(child.SelectAttrValue("academicTitle", "")),
			Email:         strings.TrimSpace(child.SelectAttrValue("email", "")),
			PlaceOfBirth:  strings.TrimSpace(child.SelectAttrValue("placeOfBirth", "")),
			DateOfBirth:   strings.TrimSpace(child.SelectAttrValue("dateOfBirth", "")),
		}

		if v := child.SelectAttrValue("allowEmailContact", ""); v == "true" || v == "1" {
			person.AllowEmailContact = true
		}

		for _, group := range child.ChildElements() {
			if group.Tag == "identifiers" {
				im.mapPersonIdentifiers(group, &person)
			}
		}

		doc.Persons = append(doc.Persons, person)
	}
}

// mapPersonIdentifiers adds the typed identifiers of a person. The legacy
// type intern is stored as misc. Only the first identifier of each type is
// kept.
func (im *Importer) mapPersonIdentifiers(node *etree.Element, person *models.Person) {
	for _, child := range node.ChildElements() {
		if child.Tag != "identifier" {
			continue
		}
		idType := child.SelectAttrValue("type", "")
		if idType == "intern" {
			idType = "misc"
		}
		if !person.AddIdentifier(idType, strings.TrimSpace(child.Text())) {
			im.logger().Warn("could not save more than one identifier of type for person",
				"type", idType, "person", person.LastName)
		}
	}
}

func mapKeywords(node *etree.Element, doc *models.Document) {
	for _, child := range node.ChildElements() {
		subjectType := child.SelectAttrValue("type", "")
		if subjectType == "" {
			subjectType = models.SubjectTypeUncontrolled
		}
		doc.Subjects = append(doc.Subjects, models.Subject{
			Value:    strings.TrimSpace(child.Text()),
			Type:     subjectType,
			Language: strings.TrimSpace(child.SelectAttrValue("language", "")),
		})
	}
}

// mapInstitutions links thesis publishers and grantors. A missing institute
// follows the missing-reference policy; an institute that does not support
// the requested role always fails the record.
func (im *Importer) mapInstitutions(ctx context.Context, node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		id := strings.TrimSpace(child.SelectAttrValue("id", ""))
		role := child.SelectAttrValue("role", "")

		inst, err := im.Store.Institutes.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if policyErr := im.missingReference(fmt.Sprintf("dnbInstitution id %s does not exist", id)); policyErr != nil {
					return policyErr
				}
				continue
			}
			return err
		}

		switch role {
		case "publisher":
			if !inst.IsPublisher {
				return fmt.Errorf("given role %s is not allowed for dnbInstitution id %s", role, id)
			}
			doc.ThesisPublishers = append(doc.ThesisPublishers, inst.ID)
		case "grantor":
			if !inst.IsGrantor {
				return fmt.Errorf("given role %s is not allowed for dnbInstitution id %s", role, id)
			}
			doc.ThesisGrantors = append(doc.ThesisGrantors, inst.ID)
		default:
			return fmt.Errorf("unknown dnbInstitution role %q", role)
		}
	}
	return nil
}

func mapIdentifiers(node *etree.Element, doc *models.Document) {
	for _, child := range node.ChildElements() {
		doc.Identifiers = append(doc.Identifiers, models.Identifier{
			Type:  child.SelectAttrValue("type", ""),
			Value: strings.TrimSpace(child.Text()),
		})
	}
}

func mapNotes(node *etree.Element, doc *models.Document) {
	for _, child := range node.ChildElements() {
		doc.Notes = append(doc.Notes, models.Note{
			Message:    strings.TrimSpace(child.Text()),
			Visibility: child.SelectAttrValue("visibility", ""),
		})
	}
}

func (im *Importer) mapCollections(ctx context.Context, node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		id := strings.TrimSpace(child.SelectAttrValue("id", ""))

		if _, err := im.Store.Collections.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if policyErr := im.missingReference(fmt.Sprintf("collection id %s does not exist", id)); policyErr != nil {
					return policyErr
				}
				continue
			}
			return err
		}
		doc.AddCollection(id)
	}
	return nil
}

func (im *Importer) mapSeries(ctx context.Context, node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		id := strings.TrimSpace(child.SelectAttrValue("id", ""))

		if _, err := im.Store.Series.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if policyErr := im.missingReference(fmt.Sprintf("series id %s does not exist", id)); policyErr != nil {
					return policyErr
				}
				continue
			}
			return err
		}
		doc.Series = append(doc.Series, models.SeriesLink{
			SeriesID: id,
			Number:   strings.TrimSpace(child.SelectAttrValue("number", "")),
		})
	}
	return nil
}

func (im *Importer) mapEnrichments(ctx context.Context, node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		key := strings.TrimSpace(child.SelectAttrValue("key", ""))

		if _, err := im.Store.EnrichmentKeys.Get(ctx, key); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if policyErr := im.missingReference(fmt.Sprintf("enrichment key %s does not exist", key)); policyErr != nil {
					return policyErr
				}
				continue
			}
			return err
		}
		addEnrichment(doc, key, child.Text())
	}
	return nil
}

// addEnrichment adds a key/value annotation, dropping empty values since an
// enrichment must have a value.
func addEnrichment(doc *models.Document, key, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	doc.AddEnrichment(key, trimmed)
}

func (im *Importer) mapLicences(ctx context.Context, node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		id := strings.TrimSpace(child.SelectAttrValue("id", ""))

		if _, err := im.Store.Licences.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if policyErr := im.missingReference(fmt.Sprintf("licence id %s does not exist", id)); policyErr != nil {
					return policyErr
				}
				continue
			}
			return err
		}
		doc.AddLicence(id)
	}
	return nil
}

// mapDates routes each date element to its scalar field. A date with a
// monthDay attribute becomes a full date (the leading hyphen of monthDay is
// dropped), one without becomes a year-only value. Embargo dates have no
// year-only form and fail the record when monthDay is missing.
func mapDates(node *etree.Element, doc *models.Document) error {
	for _, child := range node.ChildElements() {
		value := strings.TrimSpace(child.SelectAttrValue("year", ""))
		fullDate := false
		if attr := child.SelectAttr("monthDay"); attr != nil {
			value += strings.TrimSpace(attr.Value)[1:]
			fullDate = true
		}

		dateType := child.SelectAttrValue("type", "")
		switch dateType {
		case "completed":
			if fullDate {
				doc.CompletedDate = value
			} else {
				doc.CompletedYear = value
			}
		case "published":
			if fullDate {
				doc.PublishedDate = value
			} else {
				doc.PublishedYear = value
			}
		case "thesisAccepted":
			if fullDate {
				doc.ThesisDateAccepted = value
			} else {
				doc.ThesisYearAccepted = value
			}
		case "embargo":
			// an embargo needs a lift day; a bare year cannot express one
			if !fullDate {
				return fmt.Errorf("embargo date requires a monthDay attribute, got year %q", value)
			}
			doc.EmbargoDate = value
		default:
			return fmt.Errorf("unknown date type %q", dateType)
		}
	}
	return nil
}
