package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"repositum/internal/models"
	"repositum/internal/repository"
)

// AddKeyword adds a configured keyword to the document.
type AddKeyword struct {
	baseRule

	subject *models.Subject
}

func (r *AddKeyword) Configure(options map[string]any) error {
	var (
		keyword     string
		subjectType = models.SubjectTypeUncontrolled
		language    = "deu"
	)

	if keywordOpts, ok := optMap(options, "keyword"); ok {
		keyword, _ = optString(keywordOpts, "value")
		if t, ok := optString(keywordOpts, "type"); ok {
			subjectType = t
		}
		if lang, ok := optString(keywordOpts, "lang"); ok {
			language = lang
		}
	} else {
		keyword, _ = optString(options, "keyword")
	}

	if keyword != "" {
		r.subject = &models.Subject{
			Value:    keyword,
			Type:     subjectType,
			Language: language,
		}
	}
	return nil
}

func (r *AddKeyword) Apply(doc *models.Document, rctx *Context) error {
	if r.applies(doc, rctx) && r.subject != nil {
		doc.Subjects = append(doc.Subjects, *r.subject)
	}
	return nil
}

// RemoveKeywords removes the configured keywords from the document. Keywords
// can be given as a list or as a single comma-separated string.
type RemoveKeywords struct {
	baseRule

	keywords      []string
	keywordType   string
	caseSensitive bool
}

func (r *RemoveKeywords) Configure(options map[string]any) error {
	switch v := options["keywords"].(type) {
	case nil:
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				r.keywords = append(r.keywords, strings.TrimSpace(s))
			}
		}
	case string:
		for _, keyword := range strings.Split(v, ",") {
			r.keywords = append(r.keywords, strings.TrimSpace(keyword))
		}
	default:
		return fmt.Errorf("keywords must be a string or a list, got %T", v)
	}

	r.keywordType, _ = optString(options, "type")
	r.caseSensitive = optBool(options, "caseSensitive")
	return nil
}

func (r *RemoveKeywords) Apply(doc *models.Document, rctx *Context) error {
	if !r.applies(doc, rctx) {
		return nil
	}
	for _, keyword := range r.keywords {
		doc.RemoveSubject(keyword, r.keywordType, r.caseSensitive)
	}
	return nil
}

// AddCollection links the document to a configured collection. The
// collection reference is resolved once when the rules are loaded.
type AddCollection struct {
	baseRule

	option       *CollectionOption
	collectionID string
}

func (r *AddCollection) Configure(options map[string]any) error {
	collectionOpts, ok := optMap(options, "collection")
	if !ok {
		return errors.New("addCollection requires a collection block")
	}
	r.option = NewCollectionOption(collectionOpts)
	return nil
}

func (r *AddCollection) Resolve(ctx context.Context, store *repository.Store) error {
	collection, err := r.option.Resolve(ctx, store)
	if err != nil {
		return err
	}
	r.collectionID = collection.ID
	return nil
}

func (r *AddCollection) Apply(doc *models.Document, rctx *Context) error {
	if r.applies(doc, rctx) && r.collectionID != "" {
		doc.AddCollection(r.collectionID)
	}
	return nil
}

// AddLicence links the document to a configured licence. The licence
// reference is resolved once when the rules are loaded.
type AddLicence struct {
	baseRule

	licenceID string
}

func (r *AddLicence) Configure(options map[string]any) error {
	var (
		id string
		ok bool
	)
	if licenceOpts, hasMap := optMap(options, "licence"); hasMap {
		id, ok = optString(licenceOpts, "id")
	} else {
		id, ok = optString(options, "licence")
	}
	if !ok || id == "" {
		return errors.New("addLicence requires a licence id")
	}
	r.licenceID = id
	return nil
}

func (r *AddLicence) Resolve(ctx context.Context, store *repository.Store) error {
	if _, err := store.Licences.Get(ctx, r.licenceID); err != nil {
		return err
	}
	return nil
}

func (r *AddLicence) Apply(doc *models.Document, rctx *Context) error {
	if r.applies(doc, rctx) {
		doc.AddLicence(r.licenceID)
	}
	return nil
}
