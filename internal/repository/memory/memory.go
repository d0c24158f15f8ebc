// Package memory provides an in-memory implementation of the repository
// interfaces. It backs the test suites and the development seed command;
// production deployments use the Postgres implementation.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"repositum/internal/domain"
	"repositum/internal/models"
	"repositum/internal/repository"
)

// Store holds all entities behind a single mutex. Documents are deep-copied
// on the way in and out so callers cannot mutate stored state through shared
// slices.
type Store struct {
	mu sync.RWMutex

	documents       map[string]*models.Document
	collections     map[string]*models.Collection
	collectionRoles map[string]*models.CollectionRole
	licences        map[string]*models.Licence
	series          map[string]*models.Series
	institutes      map[string]*models.Institute
	enrichmentKeys  map[string]*models.EnrichmentKey
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:       make(map[string]*models.Document),
		collections:     make(map[string]*models.Collection),
		collectionRoles: make(map[string]*models.CollectionRole),
		licences:        make(map[string]*models.Licence),
		series:          make(map[string]*models.Series),
		institutes:      make(map[string]*models.Institute),
		enrichmentKeys:  make(map[string]*models.EnrichmentKey),
	}
}

// Repositories returns the store's repository views bundled as a
// repository.Store.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Documents:       &documentRepo{s},
		Collections:     &collectionRepo{s},
		CollectionRoles: &collectionRoleRepo{s},
		Licences:        &licenceRepo{s},
		Series:          &seriesRepo{s},
		Institutes:      &instituteRepo{s},
		EnrichmentKeys:  &enrichmentKeyRepo{s},
	}
}

// DocumentCount returns the number of stored documents.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// AddCollection seeds a collection, assigning an ID if none is set.
func (s *Store) AddCollection(c *models.Collection) *models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.collections[c.ID] = c
	return c
}

// AddCollectionRole seeds a collection role, assigning an ID if none is set.
func (s *Store) AddCollectionRole(role *models.CollectionRole) *models.CollectionRole {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	s.collectionRoles[role.ID] = role
	return role
}

// AddLicence seeds a licence, assigning an ID if none is set.
func (s *Store) AddLicence(l *models.Licence) *models.Licence {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.licences[l.ID] = l
	return l
}

// AddSeries seeds a series, assigning an ID if none is set.
func (s *Store) AddSeries(series *models.Series) *models.Series {
	s.mu.Lock()
	defer s.mu.Unlock()

	if series.ID == "" {
		series.ID = uuid.NewString()
	}
	s.series[series.ID] = series
	return series
}

// AddInstitute seeds an institute, assigning an ID if none is set.
func (s *Store) AddInstitute(inst *models.Institute) *models.Institute {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	s.institutes[inst.ID] = inst
	return inst
}

// AddEnrichmentKey registers an enrichment key.
func (s *Store) AddEnrichmentKey(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enrichmentKeys[name] = &models.EnrichmentKey{Name: name}
}

func copyDocument(doc *models.Document) *models.Document {
	c := *doc
	c.Titles = append([]models.Title(nil), doc.Titles...)
	c.Subjects = append([]models.Subject(nil), doc.Subjects...)
	c.Identifiers = append([]models.Identifier(nil), doc.Identifiers...)
	c.Notes = append([]models.Note(nil), doc.Notes...)
	c.Enrichments = append([]models.Enrichment(nil), doc.Enrichments...)
	c.LicenceIDs = append([]string(nil), doc.LicenceIDs...)
	c.CollectionIDs = append([]string(nil), doc.CollectionIDs...)
	c.Series = append([]models.SeriesLink(nil), doc.Series...)
	c.ThesisPublishers = append([]string(nil), doc.ThesisPublishers...)
	c.ThesisGrantors = append([]string(nil), doc.ThesisGrantors...)
	c.Files = append([]models.File(nil), doc.Files...)
	c.Persons = make([]models.Person, len(doc.Persons))
	for i, p := range doc.Persons {
		c.Persons[i] = p
		c.Persons[i].Identifiers = append([]models.PersonIdentifier(nil), p.Identifiers...)
	}
	return &c
}

type documentRepo struct{ s *Store }

func (r *documentRepo) Get(ctx context.Context, id string) (*models.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doc, ok := r.s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return copyDocument(doc), nil
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, exists := r.s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrConflict)
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	r.s.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (r *documentRepo) Update(ctx context.Context, doc *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	doc.UpdatedAt = time.Now()
	r.s.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.documents, id)
	return nil
}

type collectionRepo struct{ s *Store }

func (r *collectionRepo) Get(ctx context.Context, id string) (*models.Collection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.collections[id]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (r *collectionRepo) FindByRoleNumber(ctx context.Context, roleID, number string) ([]*models.Collection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found []*models.Collection
	for _, c := range r.s.collections {
		if c.RoleID == roleID && c.Number == number {
			found = append(found, c)
		}
	}
	return found, nil
}

func (r *collectionRepo) FindByRoleName(ctx context.Context, roleID, name string) ([]*models.Collection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found []*models.Collection
	for _, c := range r.s.collections {
		if c.RoleID == roleID && c.Name == name {
			found = append(found, c)
		}
	}
	return found, nil
}

type collectionRoleRepo struct{ s *Store }

func (r *collectionRoleRepo) FindByName(ctx context.Context, name string) (*models.CollectionRole, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, role := range r.s.collectionRoles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, fmt.Errorf("collection role %s: %w", name, domain.ErrNotFound)
}

func (r *collectionRoleRepo) FindByOAIName(ctx context.Context, oaiName string) (*models.CollectionRole, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, role := range r.s.collectionRoles {
		if strings.EqualFold(role.OAIName, oaiName) {
			return role, nil
		}
	}
	return nil, fmt.Errorf("collection role %s: %w", oaiName, domain.ErrNotFound)
}

type licenceRepo struct{ s *Store }

func (r *licenceRepo) Get(ctx context.Context, id string) (*models.Licence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.licences[id]
	if !ok {
		return nil, fmt.Errorf("licence %s: %w", id, domain.ErrNotFound)
	}
	return l, nil
}

type seriesRepo struct{ s *Store }

func (r *seriesRepo) Get(ctx context.Context, id string) (*models.Series, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sr, ok := r.s.series[id]
	if !ok {
		return nil, fmt.Errorf("series %s: %w", id, domain.ErrNotFound)
	}
	return sr, nil
}

type instituteRepo struct{ s *Store }

func (r *instituteRepo) Get(ctx context.Context, id string) (*models.Institute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inst, ok := r.s.institutes[id]
	if !ok {
		return nil, fmt.Errorf("institute %s: %w", id, domain.ErrNotFound)
	}
	return inst, nil
}

type enrichmentKeyRepo struct{ s *Store }

func (r *enrichmentKeyRepo) Get(ctx context.Context, name string) (*models.EnrichmentKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	key, ok := r.s.enrichmentKeys[name]
	if !ok {
		return nil, fmt.Errorf("enrichment key %s: %w", name, domain.ErrNotFound)
	}
	return key, nil
}
