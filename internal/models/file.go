package models

// File is a full-text attachment of a document. SourcePath points at the
// file inside the extracted import package; the store moves the content to
// its final location when the document is persisted.
type File struct {
	PathName   string `json:"path_name"`
	SourcePath string `json:"source_path,omitempty"`
	Label      string `json:"label,omitempty"`
	Language   string `json:"language,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	Comment    string `json:"comment,omitempty"`

	VisibleInOAI       bool `json:"visible_in_oai"`
	VisibleInFrontdoor bool `json:"visible_in_frontdoor"`
	SortOrder          int  `json:"sort_order"`
}
