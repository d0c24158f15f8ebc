package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"repositum/internal/domain"
	"repositum/internal/models"
	"repositum/internal/repository"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
//
// The bibliographic groups (titles, persons, subjects, files, ...) are kept
// in a single jsonb column; the server state is mirrored into its own column
// for querying.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repository.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new document record
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (server_state, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	err := r.pool.QueryRow(ctx, query,
		doc.ServerState,
		doc,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// Get retrieves a document by ID
func (r *PostgresDocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, record, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	var doc models.Document
	var docID string
	var createdAt, updatedAt time.Time
	err := r.pool.QueryRow(ctx, query, id).Scan(&docID, &doc, &createdAt, &updatedAt)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc.ID = docID
	doc.CreatedAt = createdAt
	doc.UpdatedAt = updatedAt
	return &doc, nil
}

// Update replaces an existing document record
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET server_state = $1, record = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Documents)

	doc.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		doc.ServerState,
		doc,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document record
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
