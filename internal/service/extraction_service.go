package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"drawsheet/internal/domain"
	"drawsheet/internal/parser"
	"drawsheet/internal/port"
	"drawsheet/internal/schema"
)

// ExtractInput is the DTO for an extraction request.
type ExtractInput struct {
	SessionID   uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ExtractionConfig holds the settings an ExtractionService needs beyond its
// collaborators.
type ExtractionConfig struct {
	MaxImageBytes   int64
	Bucket          string
	PresignSeconds  int64
	ArchiveDrawings bool
}

// ExtractionService runs extractions for a session and records every attempt.
type ExtractionService interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.Extraction, error)
	Get(ctx context.Context, sessionID, extractionID uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]domain.Extraction, int, error)
	DrawingURL(ctx context.Context, sessionID, extractionID uuid.UUID) (string, error)
	Schema() schema.Schema
}

type extractionService struct {
	extractor      *parser.Extractor
	sessionRepo    port.SessionRepository
	extractionRepo port.ExtractionRepository
	storage        port.ObjectStorage
	cfg            ExtractionConfig

	// inflight holds one entry per session with a backend call in progress.
	inflight sync.Map
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	extractor *parser.Extractor,
	sessionRepo port.SessionRepository,
	extractionRepo port.ExtractionRepository,
	storage port.ObjectStorage,
	cfg ExtractionConfig,
) ExtractionService {
	return &extractionService{
		extractor:      extractor,
		sessionRepo:    sessionRepo,
		extractionRepo: extractionRepo,
		storage:        storage,
		cfg:            cfg,
	}
}

func (s *extractionService) Schema() schema.Schema {
	return s.extractor.Schema()
}

func (s *extractionService) Extract(ctx context.Context, input ExtractInput) (*domain.Extraction, error) {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), ".")); ext != "" {
		if _, ok := domain.AllowedExtensions[ext]; !ok {
			return nil, domain.ErrUnsupportedFileType
		}
	}
	if s.cfg.MaxImageBytes > 0 && input.Size > s.cfg.MaxImageBytes {
		return nil, domain.ErrFileTooLarge
	}

	image, err := s.readImage(input.Body)
	if err != nil {
		return nil, err
	}

	req, err := s.extractor.Prepare(image, input.ContentType)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessionRepo.GetByID(ctx, input.SessionID); err != nil {
		return nil, err
	}

	if _, busy := s.inflight.LoadOrStore(input.SessionID, struct{}{}); busy {
		return nil, domain.ErrExtractionInProgress
	}
	defer s.inflight.Delete(input.SessionID)

	// The backend call runs to completion even if the caller goes away; the
	// HTTP client timeout bounds it.
	ctx = context.WithoutCancel(ctx)

	opts := s.extractor.Options()
	extraction := &domain.Extraction{
		ID:            uuid.New(),
		SessionID:     input.SessionID,
		FileName:      input.FileName,
		ContentType:   req.MIMEType,
		FileSize:      int64(len(image)),
		State:         domain.ExtractionStateRequesting,
		Prompt:        req.Instruction,
		MissingPolicy: string(opts.Missing),
		UnitsStripped: opts.StripUnits,
		CreatedAt:     time.Now().UTC(),
	}
	extraction.StorageKey = s.archive(ctx, extraction, image)

	log.Printf("extractionService.Extract: submitting %s (%d bytes) for session %s",
		extraction.ID, extraction.FileSize, extraction.SessionID)

	result, err := s.extractor.Submit(ctx, req)
	completedAt := time.Now().UTC()
	extraction.CompletedAt = &completedAt

	if err != nil {
		extraction.State = domain.ExtractionStateBackendFailed
		extraction.ErrorCode = BackendErrorCode(err)
		extraction.ErrorMessage = err.Error()
		log.Printf("extractionService.Extract: extraction %s failed: %v", extraction.ID, err)
		if perr := s.extractionRepo.Create(ctx, extraction); perr != nil {
			log.Printf("extractionService.Extract: failed to record failed extraction %s: %v", extraction.ID, perr)
			s.discardArchive(ctx, extraction)
		}
		return nil, err
	}

	extraction.State = domain.ExtractionStateParsed
	extraction.ModelUsed = result.Response.ModelUsed
	extraction.RawResponse = result.Response.Text
	extraction.Record = &result.Record

	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		s.discardArchive(ctx, extraction)
		return nil, fmt.Errorf("extraction.Extract: %w", err)
	}
	if err := s.sessionRepo.SetCurrentExtraction(ctx, extraction.SessionID, extraction.ID); err != nil {
		return nil, fmt.Errorf("extraction.Extract: updating current record: %w", err)
	}

	log.Printf("extractionService.Extract: extraction %s parsed by %s", extraction.ID, extraction.ModelUsed)
	return extraction, nil
}

func (s *extractionService) readImage(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, domain.ErrEmptyImage
	}
	if s.cfg.MaxImageBytes > 0 {
		body = io.LimitReader(body, s.cfg.MaxImageBytes+1)
	}
	image, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(image)) > s.cfg.MaxImageBytes {
		return nil, domain.ErrFileTooLarge
	}
	return image, nil
}

// archive stores the drawing and returns its key. Archiving is best effort:
// a storage failure is logged and never fails the extraction.
func (s *extractionService) archive(ctx context.Context, e *domain.Extraction, image []byte) string {
	if !s.cfg.ArchiveDrawings {
		return ""
	}
	ext := "png"
	if ft, ok := domain.AllowedContentTypes[e.ContentType]; ok {
		ext = string(ft)
	}
	key := fmt.Sprintf("drawings/%s/%s.%s", e.SessionID, e.ID, ext)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(image),
		ContentType: e.ContentType,
		Size:        int64(len(image)),
	}); err != nil {
		log.Printf("extractionService.archive: failed to archive drawing for %s: %v", e.ID, err)
		return ""
	}
	return key
}

// discardArchive removes the archived drawing of an extraction that was
// never recorded, since no row will ever point at it.
func (s *extractionService) discardArchive(ctx context.Context, e *domain.Extraction) {
	if e.StorageKey == "" {
		return
	}
	if err := s.storage.Delete(ctx, s.cfg.Bucket, e.StorageKey); err != nil {
		log.Printf("extractionService.discardArchive: failed to delete %s: %v", e.StorageKey, err)
	}
}

func (s *extractionService) Get(ctx context.Context, sessionID, extractionID uuid.UUID) (*domain.Extraction, error) {
	return s.extractionRepo.GetByID(ctx, sessionID, extractionID)
}

func (s *extractionService) List(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]domain.Extraction, int, error) {
	return s.extractionRepo.ListBySession(ctx, sessionID, offset, limit)
}

func (s *extractionService) DrawingURL(ctx context.Context, sessionID, extractionID uuid.UUID) (string, error) {
	extraction, err := s.extractionRepo.GetByID(ctx, sessionID, extractionID)
	if err != nil {
		return "", err
	}
	if extraction.StorageKey == "" {
		return "", domain.ErrDrawingNotArchived
	}
	return s.storage.GetPresignedURL(ctx, s.cfg.Bucket, extraction.StorageKey, s.cfg.PresignSeconds)
}

// BackendErrorCode returns the stable code stored and reported for a failed
// backend call.
func BackendErrorCode(err error) string {
	var rlErr *parser.RateLimitError
	if errors.As(err, &rlErr) {
		return "RATE_LIMITED"
	}
	if be, ok := parser.AsBackendError(err); ok {
		switch be.Kind {
		case parser.BackendUnreachable:
			return "BACKEND_UNREACHABLE"
		case parser.BackendRejected:
			return "BACKEND_REJECTED"
		case parser.BackendBadResponse:
			return "BACKEND_BAD_RESPONSE"
		}
	}
	return "BACKEND_ERROR"
}
