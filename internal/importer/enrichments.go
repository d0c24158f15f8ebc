package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repositum/internal/repository"
)

// Enrichment keys recording provenance of an import. They must be registered
// before deposits are accepted.
const (
	EnrichmentImportUser     = "opus.import.user"
	EnrichmentImportDate     = "opus.import.date"
	EnrichmentImportFile     = "opus.import.file"
	EnrichmentImportChecksum = "opus.import.checksum"
	EnrichmentSource         = "opus.source"
)

var provenanceKeys = []string{
	EnrichmentImportUser,
	EnrichmentImportDate,
	EnrichmentImportFile,
	EnrichmentImportChecksum,
	EnrichmentSource,
}

// AdditionalEnrichments collects provenance annotations that are added to
// every document of an import run: who imported, when, from which package.
type AdditionalEnrichments struct {
	keys   []string
	values map[string]string
}

// NewAdditionalEnrichments creates the provenance set for one run, stamped
// with the current UTC time and the given source (e.g. "sword"). It fails if
// any of the provenance enrichment keys is not registered.
func NewAdditionalEnrichments(ctx context.Context, store *repository.Store, source string) (*AdditionalEnrichments, error) {
	for _, key := range provenanceKeys {
		if _, err := store.EnrichmentKeys.Get(ctx, key); err != nil {
			return nil, fmt.Errorf("import enrichment key %s is not registered: %w", key, err)
		}
	}

	e := &AdditionalEnrichments{values: make(map[string]string)}
	e.Add(EnrichmentImportDate, time.Now().UTC().Format(time.RFC3339))
	e.Add(EnrichmentSource, source)
	return e, nil
}

// Add sets an enrichment, keeping insertion order for later application.
func (e *AdditionalEnrichments) Add(key, value string) {
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// AddUser records the account the import runs under.
func (e *AdditionalEnrichments) AddUser(account string) {
	e.Add(EnrichmentImportUser, strings.TrimSpace(account))
}

// AddFile records the name of the package file.
func (e *AdditionalEnrichments) AddFile(name string) {
	e.Add(EnrichmentImportFile, strings.TrimSpace(name))
}

// AddChecksum records the digest of the package payload.
func (e *AdditionalEnrichments) AddChecksum(checksum string) {
	e.Add(EnrichmentImportChecksum, strings.TrimSpace(checksum))
}

// Each calls fn for every enrichment in insertion order.
func (e *AdditionalEnrichments) Each(fn func(key, value string)) {
	if e == nil {
		return
	}
	for _, key := range e.keys {
		fn(key, e.values[key])
	}
}
