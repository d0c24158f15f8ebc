package models

// Collection is a node inside a collection role hierarchy that documents can
// be assigned to.
type Collection struct {
	ID     string `json:"id" db:"id"`
	RoleID string `json:"role_id" db:"role_id"`
	Number string `json:"number,omitempty" db:"number"`
	Name   string `json:"name,omitempty" db:"name"`
}

// CollectionRole is the root of a collection hierarchy, addressable by its
// internal name or its OAI set name.
type CollectionRole struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	OAIName string `json:"oai_name,omitempty" db:"oai_name"`
}

// Licence identifies a usage licence documents can reference.
type Licence struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	LongName string `json:"long_name,omitempty" db:"long_name"`
}

// Series is a publication series documents can be linked into with an
// ordering number.
type Series struct {
	ID    string `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// Institute represents an institution that can act as thesis publisher
// and/or thesis grantor.
type Institute struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	IsPublisher bool   `json:"is_publisher" db:"is_publisher"`
	IsGrantor   bool   `json:"is_grantor" db:"is_grantor"`
}

// EnrichmentKey registers a key that enrichments may use. Unknown keys are
// treated as dangling references during import.
type EnrichmentKey struct {
	Name string `json:"name" db:"name"`
}
