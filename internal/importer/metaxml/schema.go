package metaxml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Structural schema of the import XML, mirroring opus-import.xsd. Validation
// walks the whole tree and collects every violation instead of stopping at
// the first one.

const (
	rootTag   = "import"
	recordTag = "opusDocument"
)

// recordAttributes lists every attribute a record element may carry. oldId
// and docId are control attributes consumed before mapping; the rest map to
// document fields.
var recordAttributes = map[string]bool{
	"oldId":                   true,
	"docId":                   true,
	"language":                true,
	"type":                    true,
	"serverState":             true,
	"belongsToBibliography":   true,
	"pageFirst":               true,
	"pageLast":                true,
	"pageNumber":              true,
	"articleNumber":           true,
	"edition":                 true,
	"issue":                   true,
	"volume":                  true,
	"publisherName":           true,
	"publisherPlace":          true,
	"creatingCorporation":     true,
	"contributingCorporation": true,
}

var serverStates = map[string]bool{
	"unpublished": true,
	"published":   true,
	"restricted":  true,
	"inprogress":  true,
	"audited":     true,
	"temporary":   true,
	"deleted":     true,
}

var titleTypes = map[string]bool{
	"parent":     true,
	"sub":        true,
	"additional": true,
}

var personRoles = map[string]bool{
	"author":      true,
	"editor":      true,
	"advisor":     true,
	"referee":     true,
	"contributor": true,
	"translator":  true,
	"submitter":   true,
	"other":       true,
}

var personIdentifierTypes = map[string]bool{
	"orcid":  true,
	"gnd":    true,
	"intern": true,
	"misc":   true,
}

var subjectTypes = map[string]bool{
	"swd":          true,
	"psyndex":      true,
	"uncontrolled": true,
}

var instituteRoles = map[string]bool{
	"publisher": true,
	"grantor":   true,
}

var identifierTypes = map[string]bool{
	"old": true, "serial": true, "uuid": true, "isbn": true, "urn": true,
	"doi": true, "handle": true, "url": true, "issn": true, "std-doi": true,
	"cris-link": true, "splash-url": true, "opus3-id": true, "opac-id": true,
	"arxiv": true, "pubmed": true,
}

var noteVisibilities = map[string]bool{
	"private": true,
	"public":  true,
}

var dateTypes = map[string]bool{
	"completed":      true,
	"published":      true,
	"thesisAccepted": true,
	"embargo":        true,
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthDayPattern = regexp.MustCompile(`^--\d{2}-\d{2}$`)
)

// group describes one child group of a record element: its expected child
// tag and the attribute rules for those children.
type group struct {
	childTag string
	required []string
	optional []string
	enums    map[string]map[string]bool
}

var recordGroups = map[string]group{
	"titlesMain": {
		childTag: "titleMain",
		required: []string{"language"},
	},
	"titles": {
		childTag: "title",
		required: []string{"language", "type"},
		enums:    map[string]map[string]bool{"type": titleTypes},
	},
	"abstracts": {
		childTag: "abstract",
		required: []string{"language"},
	},
	"persons": {
		childTag: "person",
		required: []string{"role", "firstName", "lastName"},
		optional: []string{"academicTitle", "email", "placeOfBirth", "dateOfBirth", "allowEmailContact"},
		enums:    map[string]map[string]bool{"role": personRoles},
	},
	"keywords": {
		childTag: "keyword",
		required: []string{"language"},
		optional: []string{"type"},
		enums:    map[string]map[string]bool{"type": subjectTypes},
	},
	"dnbInstitutions": {
		childTag: "dnbInstitution",
		required: []string{"id", "role"},
		enums:    map[string]map[string]bool{"role": instituteRoles},
	},
	"identifiers": {
		childTag: "identifier",
		required: []string{"type"},
		enums:    map[string]map[string]bool{"type": identifierTypes},
	},
	"notes": {
		childTag: "note",
		required: []string{"visibility"},
		enums:    map[string]map[string]bool{"visibility": noteVisibilities},
	},
	"collections": {
		childTag: "collection",
		required: []string{"id"},
	},
	"series": {
		childTag: "seriesItem",
		required: []string{"id", "number"},
	},
	"enrichments": {
		childTag: "enrichment",
		required: []string{"key"},
	},
	"licences": {
		childTag: "licence",
		required: []string{"id"},
	},
	"dates": {
		childTag: "date",
		required: []string{"type", "year"},
		optional: []string{"monthDay"},
		enums:    map[string]map[string]bool{"type": dateTypes},
	},
	"files": {
		childTag: "file",
		optional: []string{"name", "path", "language", "displayName", "visibleInFrontdoor", "visibleInOai", "sortOrder"},
	},
}

type validator struct {
	issues []Issue
}

func (v *validator) errorf(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Path:     path,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) validate(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		v.errorf("/", "document has no root element")
		return
	}
	if root.Tag != rootTag {
		v.errorf("/"+root.Tag, "root element must be <%s>, got <%s>", rootTag, root.Tag)
		return
	}

	records := root.ChildElements()
	if len(records) == 0 {
		v.errorf("/"+rootTag, "no <%s> elements found", recordTag)
	}

	for i, rec := range records {
		path := fmt.Sprintf("/%s/%s[%d]", rootTag, recordTag, i+1)
		if rec.Tag != recordTag {
			v.errorf(path, "unexpected element <%s>, expected <%s>", rec.Tag, recordTag)
			continue
		}
		v.validateRecord(rec, path)
	}
}

func (v *validator) validateRecord(rec *etree.Element, path string) {
	for _, attr := range rec.Attr {
		if !recordAttributes[attr.Key] {
			v.errorf(path, "unknown attribute %q", attr.Key)
		}
	}

	if state := strings.TrimSpace(rec.SelectAttrValue("serverState", "")); state != "" && !serverStates[state] {
		v.errorf(path, "invalid serverState %q", state)
	}
	if bib := strings.TrimSpace(rec.SelectAttrValue("belongsToBibliography", "")); bib != "" && bib != "true" && bib != "false" {
		v.errorf(path, "belongsToBibliography must be true or false, got %q", bib)
	}

	for _, node := range rec.ChildElements() {
		groupPath := path + "/" + node.Tag
		g, ok := recordGroups[node.Tag]
		if !ok {
			v.errorf(groupPath, "unknown element <%s>", node.Tag)
			continue
		}
		v.validateGroup(node, g, groupPath)
	}
}

func (v *validator) validateGroup(node *etree.Element, g group, path string) {
	for i, child := range node.ChildElements() {
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.Tag, i+1)
		if child.Tag != g.childTag {
			v.errorf(childPath, "unexpected element <%s>, expected <%s>", child.Tag, g.childTag)
			continue
		}

		for _, name := range g.required {
			if child.SelectAttr(name) == nil {
				v.errorf(childPath, "missing required attribute %q", name)
			}
		}

		allowed := make(map[string]bool, len(g.required)+len(g.optional))
		for _, name := range g.required {
			allowed[name] = true
		}
		for _, name := range g.optional {
			allowed[name] = true
		}
		for _, attr := range child.Attr {
			if !allowed[attr.Key] {
				v.errorf(childPath, "unknown attribute %q", attr.Key)
			}
		}

		for name, values := range g.enums {
			attr := child.SelectAttr(name)
			if attr == nil {
				continue
			}
			if value := strings.TrimSpace(attr.Value); value != "" && !values[value] {
				v.errorf(childPath, "invalid %s %q", name, value)
			}
		}

		switch child.Tag {
		case "date":
			v.validateDate(child, childPath)
		case "person":
			v.validatePersonIdentifiers(child, childPath)
		case "file":
			v.validateFile(child, childPath)
		}
	}
}

func (v *validator) validateDate(child *etree.Element, path string) {
	if year := strings.TrimSpace(child.SelectAttrValue("year", "")); year != "" && !yearPattern.MatchString(year) {
		v.errorf(path, "year must be four digits, got %q", year)
	}
	if attr := child.SelectAttr("monthDay"); attr != nil {
		if md := strings.TrimSpace(attr.Value); !monthDayPattern.MatchString(md) {
			v.errorf(path, "monthDay must match --MM-DD, got %q", md)
		}
	}
}

func (v *validator) validatePersonIdentifiers(person *etree.Element, path string) {
	for _, node := range person.ChildElements() {
		if node.Tag != "identifiers" {
			v.errorf(path+"/"+node.Tag, "unexpected element <%s>, expected <identifiers>", node.Tag)
			continue
		}
		for i, id := range node.ChildElements() {
			idPath := fmt.Sprintf("%s/identifiers/%s[%d]", path, id.Tag, i+1)
			if id.Tag != "identifier" {
				v.errorf(idPath, "unexpected element <%s>, expected <identifier>", id.Tag)
				continue
			}
			idType := strings.TrimSpace(id.SelectAttrValue("type", ""))
			if idType == "" {
				v.errorf(idPath, "missing required attribute %q", "type")
			} else if !personIdentifierTypes[idType] {
				v.errorf(idPath, "invalid type %q", idType)
			}
		}
	}
}

func (v *validator) validateFile(file *etree.Element, path string) {
	name := strings.TrimSpace(file.SelectAttrValue("name", ""))
	filePath := strings.TrimSpace(file.SelectAttrValue("path", ""))
	if name == "" && filePath == "" {
		v.errorf(path, "at least one of the attributes name or path must be set")
	}

	for _, node := range file.ChildElements() {
		switch node.Tag {
		case "comment":
		case "checksum":
			if strings.TrimSpace(node.SelectAttrValue("type", "")) == "" {
				v.errorf(path+"/checksum", "missing required attribute %q", "type")
			}
		default:
			v.errorf(path+"/"+node.Tag, "unexpected element <%s>", node.Tag)
		}
	}
}
