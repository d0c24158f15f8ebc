package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Documents       string
	Collections     string
	CollectionRoles string
	Licences        string
	Series          string
	Institutes      string
	EnrichmentKeys  string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:       fmt.Sprintf("%sdocuments", prefix),
		Collections:     fmt.Sprintf("%scollections", prefix),
		CollectionRoles: fmt.Sprintf("%scollection_roles", prefix),
		Licences:        fmt.Sprintf("%slicences", prefix),
		Series:          fmt.Sprintf("%sseries", prefix),
		Institutes:      fmt.Sprintf("%sinstitutes", prefix),
		EnrichmentKeys:  fmt.Sprintf("%senrichment_keys", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// The dynamic table prefixes (dev_, test_, prod_) are interpolated into the
// SQL before it reaches the server, so each environment gets its own set of
// prepared statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
