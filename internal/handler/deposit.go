package handler

import (
	"log/slog"
	"mime"
	"net/http"

	"repositum/internal/config"
	"repositum/internal/httputil"
	"repositum/internal/importer"
	"repositum/internal/models"
	"repositum/internal/service"
)

// DepositHandler accepts import packages over HTTP.
//
// The request body is the package archive; the Content-Type header selects
// the extractor. Authentication is handled upstream, the basic-auth user
// name only identifies the depositor for provenance and rule conditions.
type DepositHandler struct {
	importService *service.ImportService
	logger        *slog.Logger
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(importService *service.ImportService, logger *slog.Logger) *DepositHandler {
	return &DepositHandler{
		importService: importService,
		logger:        logger,
	}
}

// DepositResponse describes the outcome of a deposit. Partial failures are
// reported here, not as an HTTP error.
type DepositResponse struct {
	Imported  int                      `json:"imported"`
	Skipped   int                      `json:"skipped"`
	Documents []DepositedDocument      `json:"documents"`
	Rejects   []importer.SkippedRecord `json:"rejects,omitempty"`
}

// DepositedDocument is the per-document summary of a deposit response.
type DepositedDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	ServerState string `json:"serverState"`
	FileCount   int    `json:"fileCount"`
}

// Deposit handles package uploads.
// POST /api/deposit
func (h *DepositHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Content-Type header is required")
		return
	}

	account, _, _ := r.BasicAuth()
	packageName := packageNameFromRequest(r)

	h.logger.Info("processing deposit",
		"content_type", contentType,
		"package", packageName,
		"account", account,
	)

	body := http.MaxBytesReader(w, r.Body, config.MaxPackageBytes)
	status, err := h.importService.ProcessPackage(r.Context(), contentType, packageName, account, body)
	if err != nil {
		h.logger.Error("deposit failed", "package", packageName, "error", err)
		handleError(w, err)
		return
	}

	response := DepositResponse{
		Imported:  status.ImportedCount(),
		Skipped:   status.SkippedCount(),
		Documents: make([]DepositedDocument, 0, len(status.Imported)),
		Rejects:   status.Skipped,
	}
	for _, doc := range status.Imported {
		response.Documents = append(response.Documents, summarize(doc))
	}

	h.logger.Info("deposit complete",
		"package", packageName,
		"imported", response.Imported,
		"skipped", response.Skipped,
	)

	httputil.RespondJSON(w, http.StatusCreated, response)
}

func summarize(doc *models.Document) DepositedDocument {
	summary := DepositedDocument{
		ID:          doc.ID,
		ServerState: doc.ServerState,
		FileCount:   len(doc.Files),
	}
	if titles := doc.TitlesByType(models.TitleMain); len(titles) > 0 {
		summary.Title = titles[0].Value
	}
	return summary
}

// packageNameFromRequest takes the package file name from the
// Content-Disposition header when present.
func packageNameFromRequest(r *http.Request) string {
	disposition := r.Header.Get("Content-Disposition")
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
