package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"repositum/internal/config"
	"repositum/internal/domain"
	"repositum/internal/importer"
	"repositum/internal/importer/extract"
	"repositum/internal/importer/metaxml"
	"repositum/internal/importer/rules"
	"repositum/internal/repository"
)

// extractionDirName is the subdirectory of the working directory a package
// is unpacked into.
const extractionDirName = "extracted"

// ImportService processes import packages and metadata files. It owns the
// loaded rule engine and the import collection, both resolved once at
// startup.
type ImportService struct {
	store     *repository.Store
	cfg       *config.Config
	importCfg *config.ImportConfig
	logger    *slog.Logger
	rejectLog *slog.Logger

	rules              *rules.Engine
	importCollectionID string
	fileTypes          *importer.FileTypes
}

// NewImportService wires the import pipeline. Rule references and the
// configured import collection are resolved against the store here, so a
// broken configuration fails at startup instead of on the first deposit.
func NewImportService(
	ctx context.Context,
	store *repository.Store,
	cfg *config.Config,
	importCfg *config.ImportConfig,
	logger *slog.Logger,
) (*ImportService, error) {
	loader := &rules.Loader{Store: store, Logger: logger}
	engine, err := loader.Load(ctx, importCfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("load import rules: %w", err)
	}

	s := &ImportService{
		store:     store,
		cfg:       cfg,
		importCfg: importCfg,
		logger:    logger,
		rules:     engine,
	}

	if len(importCfg.Collection) > 0 {
		collection, err := rules.NewCollectionOption(importCfg.Collection).Resolve(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("resolve import collection: %w", err)
		}
		s.importCollectionID = collection.ID
	}

	if len(importCfg.FileTypes) > 0 {
		s.fileTypes = importer.NewFileTypes(importCfg.FileTypes)
	}

	return s, nil
}

// SetRejectLog directs skipped-record entries to the given logger.
func (s *ImportService) SetRejectLog(logger *slog.Logger) {
	s.rejectLog = logger
}

// ProcessPackage imports a deposited package: the payload is saved, the
// archive extracted, the metadata validated and every record imported under
// the deposit policy. Partial failures are reported in the returned status;
// only request-fatal problems (unsupported content type, unreadable archive,
// invalid XML) surface as errors.
func (s *ImportService) ProcessPackage(ctx context.Context, contentType, packageName, account string, payload io.Reader) (*importer.Status, error) {
	extractor, err := extract.ForContentType(contentType)
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(s.cfg.TempPath, uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	defer s.cleanup(workDir)

	pkgPath := filepath.Join(workDir, "package"+extensionForContentType(contentType))
	checksum, err := savePayload(pkgPath, payload)
	if err != nil {
		return nil, fmt.Errorf("save package: %w", err)
	}

	extractDir := filepath.Join(workDir, extractionDirName)
	if _, err := extract.Unpack(extractor, pkgPath, extractDir, s.logger); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("cannot extract package: %v", err)}
	}

	meta, err := s.loadMetadata(extractDir)
	if err != nil {
		return nil, err
	}

	enrichments, err := importer.NewAdditionalEnrichments(ctx, s.store, "sword")
	if err != nil {
		return nil, err
	}
	if account != "" {
		enrichments.AddUser(account)
	}
	if packageName != "" {
		enrichments.AddFile(packageName)
	}
	enrichments.AddChecksum(checksum)

	im := &importer.Importer{
		Store:              s.store,
		Policy:             importer.DepositPolicy(),
		Logger:             s.logger,
		RejectLog:          s.rejectLog,
		ImportDir:          extractDir,
		Enrichments:        enrichments,
		ImportCollectionID: s.importCollectionID,
		Rules:              s.rules,
		RuleContext:        rules.Context{Account: account},
		FileTypes:          s.fileTypes,
	}

	status, err := im.Run(ctx, meta)
	if err != nil {
		var skipped *importer.SkippedRecordsError
		if errors.As(err, &skipped) {
			// partial failures must not block the rest of a bulk deposit
			s.logger.Warn("deposit finished with skipped records",
				"imported", status.ImportedCount(),
				"skipped", status.SkippedCount())
			return status, nil
		}
		return nil, err
	}
	return status, nil
}

// ImportMetadataFile runs an administrative import of a metadata XML file.
// Files referenced by the metadata are resolved relative to the file's
// directory. Skipped records surface as a *importer.SkippedRecordsError next
// to the status.
func (s *ImportService) ImportMetadataFile(ctx context.Context, path, account string) (*importer.Status, error) {
	meta, err := metaxml.LoadFile(path)
	if err != nil {
		return nil, err
	}

	im := &importer.Importer{
		Store:              s.store,
		Policy:             importer.AdministrativePolicy(),
		Logger:             s.logger,
		RejectLog:          s.rejectLog,
		ImportDir:          filepath.Dir(path),
		KeepFields:         s.importCfg.KeepFieldsOnUpdate,
		ImportCollectionID: s.importCollectionID,
		Rules:              s.rules,
		RuleContext:        rules.Context{Account: account},
		FileTypes:          s.fileTypes,
	}

	return im.Run(ctx, meta)
}

// loadMetadata reads and validates the metadata file of an extracted
// package. A missing or empty metadata file is a validation error.
func (s *ImportService) loadMetadata(extractDir string) (*metaxml.Metadata, error) {
	metadataPath := filepath.Join(extractDir, metaxml.MetadataFileName)
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		s.logger.Error("missing metadata file", "path", metadataPath)
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("package does not contain a readable %s", metaxml.MetadataFileName),
		}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("metadata file %s is empty", metaxml.MetadataFileName),
		}
	}

	meta, err := metaxml.Load(data)
	if err != nil {
		var invalid *metaxml.InvalidXMLError
		if errors.As(err, &invalid) {
			return nil, &domain.ValidationError{Message: invalid.Error()}
		}
		return nil, err
	}
	return meta, nil
}

// savePayload writes the uploaded payload to disk and returns its SHA-256
// digest in hex.
func savePayload(path string, payload io.Reader) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), payload); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *ImportService) cleanup(workDir string) {
	if s.cfg.KeepTempFiles {
		s.logger.Debug("keeping temporary files", "dir", workDir)
		return
	}
	if err := os.RemoveAll(workDir); err != nil {
		s.logger.Warn("failed to remove working directory", "dir", workDir, "error", err)
	}
}

func extensionForContentType(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case "application/x-tar", "application/tar":
		return ".tar"
	case "application/gzip", "application/x-gzip":
		return ".tar.gz"
	default:
		return ".zip"
	}
}
