package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repositum/internal/domain"
	"repositum/internal/models"
	"repositum/internal/repository"
)

// PostgresCollectionRepository implements the CollectionRepository interface
type PostgresCollectionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(config *RepositoryConfig) repository.CollectionRepository {
	return &PostgresCollectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a collection by ID
func (r *PostgresCollectionRepository) Get(ctx context.Context, id string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, role_id, number, name
		FROM %s
		WHERE id = $1
	`, r.tables.Collections)

	var c models.Collection
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.RoleID, &c.Number, &c.Name)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}

	return &c, nil
}

// FindByRoleNumber returns the collections of a role with the given number
func (r *PostgresCollectionRepository) FindByRoleNumber(ctx context.Context, roleID, number string) ([]*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, role_id, number, name
		FROM %s
		WHERE role_id = $1 AND number = $2
		ORDER BY id
	`, r.tables.Collections)

	return r.findCollections(ctx, query, roleID, number)
}

// FindByRoleName returns the collections of a role with the given name
func (r *PostgresCollectionRepository) FindByRoleName(ctx context.Context, roleID, name string) ([]*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, role_id, number, name
		FROM %s
		WHERE role_id = $1 AND name = $2
		ORDER BY id
	`, r.tables.Collections)

	return r.findCollections(ctx, query, roleID, name)
}

func (r *PostgresCollectionRepository) findCollections(ctx context.Context, query string, args ...any) ([]*models.Collection, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find collections: %w", err)
	}
	defer rows.Close()

	var collections []*models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.RoleID, &c.Number, &c.Name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, &c)
	}

	return collections, rows.Err()
}

// PostgresCollectionRoleRepository implements the CollectionRoleRepository interface
type PostgresCollectionRoleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCollectionRoleRepository creates a new collection role repository
func NewCollectionRoleRepository(config *RepositoryConfig) repository.CollectionRoleRepository {
	return &PostgresCollectionRoleRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// FindByName retrieves a collection role by its internal name
func (r *PostgresCollectionRoleRepository) FindByName(ctx context.Context, name string) (*models.CollectionRole, error) {
	query := fmt.Sprintf(`
		SELECT id, name, oai_name
		FROM %s
		WHERE name = $1
	`, r.tables.CollectionRoles)

	return r.scanRole(r.pool.QueryRow(ctx, query, name), name)
}

// FindByOAIName retrieves a collection role by its OAI set name
func (r *PostgresCollectionRoleRepository) FindByOAIName(ctx context.Context, oaiName string) (*models.CollectionRole, error) {
	query := fmt.Sprintf(`
		SELECT id, name, oai_name
		FROM %s
		WHERE oai_name = $1
	`, r.tables.CollectionRoles)

	return r.scanRole(r.pool.QueryRow(ctx, query, oaiName), oaiName)
}

func (r *PostgresCollectionRoleRepository) scanRole(row pgx.Row, key string) (*models.CollectionRole, error) {
	var role models.CollectionRole
	err := row.Scan(&role.ID, &role.Name, &role.OAIName)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("collection role %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collection role: %w", err)
	}
	return &role, nil
}

// PostgresLicenceRepository implements the LicenceRepository interface
type PostgresLicenceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewLicenceRepository creates a new licence repository
func NewLicenceRepository(config *RepositoryConfig) repository.LicenceRepository {
	return &PostgresLicenceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a licence by ID
func (r *PostgresLicenceRepository) Get(ctx context.Context, id string) (*models.Licence, error) {
	query := fmt.Sprintf(`
		SELECT id, name, long_name
		FROM %s
		WHERE id = $1
	`, r.tables.Licences)

	var l models.Licence
	err := r.pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.LongName)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("licence %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get licence: %w", err)
	}

	return &l, nil
}

// PostgresSeriesRepository implements the SeriesRepository interface
type PostgresSeriesRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSeriesRepository creates a new series repository
func NewSeriesRepository(config *RepositoryConfig) repository.SeriesRepository {
	return &PostgresSeriesRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a series by ID
func (r *PostgresSeriesRepository) Get(ctx context.Context, id string) (*models.Series, error) {
	query := fmt.Sprintf(`
		SELECT id, title
		FROM %s
		WHERE id = $1
	`, r.tables.Series)

	var s models.Series
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Title)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("series %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}

	return &s, nil
}

// PostgresInstituteRepository implements the InstituteRepository interface
type PostgresInstituteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewInstituteRepository creates a new institute repository
func NewInstituteRepository(config *RepositoryConfig) repository.InstituteRepository {
	return &PostgresInstituteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves an institute by ID
func (r *PostgresInstituteRepository) Get(ctx context.Context, id string) (*models.Institute, error) {
	query := fmt.Sprintf(`
		SELECT id, name, is_publisher, is_grantor
		FROM %s
		WHERE id = $1
	`, r.tables.Institutes)

	var inst models.Institute
	err := r.pool.QueryRow(ctx, query, id).Scan(&inst.ID, &inst.Name, &inst.IsPublisher, &inst.IsGrantor)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("institute %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get institute: %w", err)
	}

	return &inst, nil
}

// PostgresEnrichmentKeyRepository implements the EnrichmentKeyRepository interface
type PostgresEnrichmentKeyRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewEnrichmentKeyRepository creates a new enrichment key repository
func NewEnrichmentKeyRepository(config *RepositoryConfig) repository.EnrichmentKeyRepository {
	return &PostgresEnrichmentKeyRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a registered enrichment key by name
func (r *PostgresEnrichmentKeyRepository) Get(ctx context.Context, name string) (*models.EnrichmentKey, error) {
	query := fmt.Sprintf(`
		SELECT name
		FROM %s
		WHERE name = $1
	`, r.tables.EnrichmentKeys)

	var key models.EnrichmentKey
	err := r.pool.QueryRow(ctx, query, name).Scan(&key.Name)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("enrichment key %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get enrichment key: %w", err)
	}

	return &key, nil
}

// NewStore wires all Postgres repositories into a repository.Store.
func NewStore(config *RepositoryConfig) *repository.Store {
	return &repository.Store{
		Documents:       NewDocumentRepository(config),
		Collections:     NewCollectionRepository(config),
		CollectionRoles: NewCollectionRoleRepository(config),
		Licences:        NewLicenceRepository(config),
		Series:          NewSeriesRepository(config),
		Institutes:      NewInstituteRepository(config),
		EnrichmentKeys:  NewEnrichmentKeyRepository(config),
	}
}
