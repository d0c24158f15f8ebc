// Administrative bulk import. Reads a metadata XML file and imports every
// record, resolving referenced fulltext files relative to the metadata file.
// Exits non-zero when any record was skipped; the reject log has the details.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"repositum/internal/config"
	"repositum/internal/importer"
	"repositum/internal/repository/postgres"
	"repositum/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	metadataFile := flag.String("file", "", "Path to the metadata XML file (required)")
	account := flag.String("account", "", "Account name recorded with the import and matched by rule conditions")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *metadataFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	importCfg, err := config.LoadImportConfig(cfg.ImportConfigFile)
	if err != nil {
		log.Fatalf("Failed to load import configuration: %v", err)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	})

	importService, err := service.NewImportService(ctx, store, cfg, importCfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup import service: %v", err)
	}

	rejectFile, err := config.SetupLogFile(cfg.LogDir, "import", config.MaxImportLogFiles)
	if err != nil {
		log.Fatalf("Failed to setup import log: %v", err)
	}
	defer rejectFile.Close()
	importService.SetRejectLog(slog.New(slog.NewTextHandler(rejectFile, nil)))

	status, err := importService.ImportMetadataFile(ctx, *metadataFile, *account)

	var skipped *importer.SkippedRecordsError
	switch {
	case errors.As(err, &skipped):
		fmt.Printf("Imported %d document(s), skipped %d record(s):\n",
			status.ImportedCount(), status.SkippedCount())
		for _, record := range skipped.Skipped {
			fmt.Printf("  %s: %s\n", record.OldID, record.Reason)
		}
		fmt.Printf("See %s for details.\n", rejectFile.Name())
		os.Exit(1)
	case err != nil:
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Imported %d document(s).\n", status.ImportedCount())
	for _, doc := range status.Imported {
		fmt.Printf("  %s (%s)\n", doc.ID, doc.ServerState)
	}
}
