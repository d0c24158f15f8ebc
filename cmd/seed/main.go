// Seed sets up the database schema and loads the reference entities the
// import pipeline resolves against: collection roles, collections, licences,
// series, institutes and the registered enrichment keys.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"repositum/internal/config"
	"repositum/internal/importer"
	"repositum/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed reference data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	log.Println("Seeding reference entities...")
	if err := seedReferenceData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	log.Println("Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.CollectionRoles + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			oai_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Collections + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			role_id UUID NOT NULL REFERENCES ` + tables.CollectionRoles + `(id) ON DELETE CASCADE,
			number TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Licences + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			long_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Series + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Institutes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			is_publisher BOOLEAN NOT NULL DEFAULT FALSE,
			is_grantor BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.EnrichmentKeys + ` (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			server_state TEXT NOT NULL,
			record JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_server_state ON ` + tables.Documents + `(server_state)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `collections_role_number ON ` + tables.Collections + `(role_id, number)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `collections_role_name ON ` + tables.Collections + `(role_id, name)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Documents,
		tables.Collections,
		tables.CollectionRoles,
		tables.Licences,
		tables.Series,
		tables.Institutes,
		tables.EnrichmentKeys,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}

func seedReferenceData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Enrichment keys: the provenance keys stamped onto every deposited
	// document must be registered or deposits are refused.
	enrichmentKeys := []string{
		importer.EnrichmentImportUser,
		importer.EnrichmentImportDate,
		importer.EnrichmentImportFile,
		importer.EnrichmentImportChecksum,
		importer.EnrichmentSource,
	}
	for _, key := range enrichmentKeys {
		_, err := pool.Exec(ctx, `
			INSERT INTO `+tables.EnrichmentKeys+` (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, key)
		if err != nil {
			return err
		}
		log.Printf("  enrichment key %s", key)
	}

	// Licences
	licences := []struct{ name, longName string }{
		{"CC-BY-4.0", "Creative Commons Attribution 4.0 International"},
		{"CC-BY-SA-4.0", "Creative Commons Attribution-ShareAlike 4.0 International"},
		{"CC-BY-NC-ND-4.0", "Creative Commons Attribution-NonCommercial-NoDerivatives 4.0 International"},
		{"InC", "In Copyright"},
	}
	for _, l := range licences {
		_, err := pool.Exec(ctx, `
			INSERT INTO `+tables.Licences+` (name, long_name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, l.name, l.longName)
		if err != nil {
			return err
		}
		log.Printf("  licence %s", l.name)
	}

	// Collection role + collection for incoming deposits
	var roleID string
	err := pool.QueryRow(ctx, `
		INSERT INTO `+tables.CollectionRoles+` (name, oai_name)
		VALUES ('import', 'import')
		ON CONFLICT (name) DO UPDATE SET oai_name = EXCLUDED.oai_name
		RETURNING id
	`).Scan(&roleID)
	if err != nil {
		return err
	}
	log.Printf("  collection role import (%s)", roleID)

	var exists bool
	err = pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM `+tables.Collections+` WHERE role_id = $1 AND number = 'deposits')
	`, roleID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		_, err = pool.Exec(ctx, `
			INSERT INTO `+tables.Collections+` (role_id, number, name)
			VALUES ($1, 'deposits', 'Incoming deposits')
		`, roleID)
		if err != nil {
			return err
		}
		log.Printf("  collection deposits")
	}

	log.Printf("  reference data seeded at %s", time.Now().Format(time.RFC3339))
	return nil
}
