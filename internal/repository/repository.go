// Package repository defines the persistence interfaces the import pipeline
// works against. Implementations exist for Postgres (production) and an
// in-memory store (tests, seeding).
package repository

import (
	"context"

	"repositum/internal/models"
)

// DocumentRepository persists document records.
type DocumentRepository interface {
	Get(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
}

// CollectionRepository resolves collection references.
type CollectionRepository interface {
	Get(ctx context.Context, id string) (*models.Collection, error)
	// FindByRoleNumber returns the collections of a role with the given number.
	FindByRoleNumber(ctx context.Context, roleID, number string) ([]*models.Collection, error)
	// FindByRoleName returns the collections of a role with the given name.
	FindByRoleName(ctx context.Context, roleID, name string) ([]*models.Collection, error)
}

// CollectionRoleRepository resolves collection roles by name.
type CollectionRoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.CollectionRole, error)
	FindByOAIName(ctx context.Context, oaiName string) (*models.CollectionRole, error)
}

// LicenceRepository resolves licence references.
type LicenceRepository interface {
	Get(ctx context.Context, id string) (*models.Licence, error)
}

// SeriesRepository resolves series references.
type SeriesRepository interface {
	Get(ctx context.Context, id string) (*models.Series, error)
}

// InstituteRepository resolves institution references.
type InstituteRepository interface {
	Get(ctx context.Context, id string) (*models.Institute, error)
}

// EnrichmentKeyRepository resolves registered enrichment keys.
type EnrichmentKeyRepository interface {
	Get(ctx context.Context, name string) (*models.EnrichmentKey, error)
}

// Store bundles all repositories the importer needs.
type Store struct {
	Documents       DocumentRepository
	Collections     CollectionRepository
	CollectionRoles CollectionRoleRepository
	Licences        LicenceRepository
	Series          SeriesRepository
	Institutes      InstituteRepository
	EnrichmentKeys  EnrichmentKeyRepository
}
