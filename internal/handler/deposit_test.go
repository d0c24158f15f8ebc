package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repositum/internal/config"
	"repositum/internal/importer"
	"repositum/internal/repository/memory"
	"repositum/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDepositHandler(t *testing.T, store *memory.Store) *DepositHandler {
	t.Helper()

	cfg := &config.Config{TempPath: t.TempDir()}
	svc, err := service.NewImportService(context.Background(), store.Repositories(), cfg, &config.ImportConfig{}, discardLogger())
	require.NoError(t, err)
	return NewDepositHandler(svc, discardLogger())
}

func seedEnrichmentKeys(store *memory.Store) {
	for _, key := range []string{
		importer.EnrichmentImportUser, importer.EnrichmentImportDate,
		importer.EnrichmentImportFile, importer.EnrichmentImportChecksum,
		importer.EnrichmentSource,
	} {
		store.AddEnrichmentKey(key)
	}
}

func buildZip(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf
}

func TestDeposit(t *testing.T) {
	store := memory.NewStore()
	seedEnrichmentKeys(store)
	h := newDepositHandler(t, store)

	pkg := buildZip(t, map[string]string{
		"opus.xml": `<import>
			<opusDocument language="eng" type="article">
				<titlesMain>
					<titleMain language="eng">Deposited document</titleMain>
				</titlesMain>
			</opusDocument>
		</import>`,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/deposit", pkg)
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("Content-Disposition", `attachment; filename="deposit.zip"`)
	req.SetBasicAuth("depositor", "secret")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var response DepositResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Imported)
	assert.Equal(t, 0, response.Skipped)
	require.Len(t, response.Documents, 1)
	assert.Equal(t, "Deposited document", response.Documents[0].Title)
	assert.Equal(t, "unpublished", response.Documents[0].ServerState)
	assert.Equal(t, 1, store.DocumentCount())
}

func TestDepositMissingContentType(t *testing.T) {
	h := newDepositHandler(t, memory.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/deposit", bytes.NewReader(nil))
	req.Header.Del("Content-Type")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepositUnsupportedMediaType(t *testing.T) {
	h := newDepositHandler(t, memory.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/deposit", bytes.NewReader([]byte("%PDF-1.4")))
	req.Header.Set("Content-Type", "application/pdf")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestDepositInvalidMetadata(t *testing.T) {
	store := memory.NewStore()
	seedEnrichmentKeys(store)
	h := newDepositHandler(t, store)

	pkg := buildZip(t, map[string]string{"opus.xml": `<import><nonsense/></import>`})

	req := httptest.NewRequest(http.MethodPost, "/api/deposit", pkg)
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.DocumentCount())
}

func TestHandleErrorOversizedUpload(t *testing.T) {
	// the shape savePayload produces when the body cap trips mid-copy
	err := fmt.Errorf("save package: %w", &http.MaxBytesError{Limit: config.MaxPackageBytes})
	rec := httptest.NewRecorder()

	handleError(rec, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "maximum size")
}

func TestDepositPartialFailureStillCreated(t *testing.T) {
	store := memory.NewStore()
	seedEnrichmentKeys(store)
	h := newDepositHandler(t, store)

	pkg := buildZip(t, map[string]string{
		"opus.xml": `<import>
			<opusDocument type="article" oldId="ok"/>
			<opusDocument type="article" oldId="broken">
				<collections>
					<collection id="does-not-exist"/>
				</collections>
			</opusDocument>
		</import>`,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/deposit", pkg)
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var response DepositResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Imported)
}
