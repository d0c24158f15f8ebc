package models

// Person roles supported by the import format. The role determines which
// contributor list the person appears in.
const (
	RoleAuthor      = "author"
	RoleEditor      = "editor"
	RoleAdvisor     = "advisor"
	RoleReferee     = "referee"
	RoleContributor = "contributor"
	RoleTranslator  = "translator"
	RoleSubmitter   = "submitter"
	RoleOther       = "other"
)

// PersonIdentifier is a typed external identifier (orcid, gnd, misc).
// At most one identifier per type is kept for a person.
type PersonIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Person is a role-tagged contributor of a document.
type Person struct {
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name"`

	AcademicTitle string `json:"academic_title,omitempty"`
	Email         string `json:"email,omitempty"`
	PlaceOfBirth  string `json:"place_of_birth,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`

	AllowEmailContact bool `json:"allow_email_contact,omitempty"`

	Identifiers []PersonIdentifier `json:"identifiers,omitempty"`
}

// HasIdentifierType reports whether an identifier of the given type is
// already set.
func (p *Person) HasIdentifierType(typ string) bool {
	for _, id := range p.Identifiers {
		if id.Type == typ {
			return true
		}
	}
	return false
}

// AddIdentifier sets a typed identifier. It returns false if an identifier
// of that type already exists; the second occurrence is discarded.
func (p *Person) AddIdentifier(typ, value string) bool {
	if p.HasIdentifierType(typ) {
		return false
	}
	p.Identifiers = append(p.Identifiers, PersonIdentifier{Type: typ, Value: value})
	return true
}
