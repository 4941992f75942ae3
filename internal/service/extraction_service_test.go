package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/domain"
	"drawsheet/internal/parser"
	"drawsheet/internal/port"
	"drawsheet/internal/schema"
	"drawsheet/internal/service"
	"drawsheet/mocks"
)

// pngContent returns minimal PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

type extractionFixture struct {
	backend     *mocks.MockVisionBackend
	sessions    *mocks.MockSessionRepo
	extractions *mocks.MockExtractionRepo
	storage     *mocks.MockObjectStorage
	svc         service.ExtractionService
}

func newExtractionFixture(cfg service.ExtractionConfig) *extractionFixture {
	f := &extractionFixture{
		backend:     new(mocks.MockVisionBackend),
		sessions:    new(mocks.MockSessionRepo),
		extractions: new(mocks.MockExtractionRepo),
		storage:     new(mocks.MockObjectStorage),
	}
	extractor := parser.NewExtractor(f.backend, schema.Cylinder(), parser.NormalizeOptions{Missing: parser.MissingNotAvailable})
	f.svc = service.NewExtractionService(extractor, f.sessions, f.extractions, f.storage, cfg)
	return f
}

func defaultExtractionConfig() service.ExtractionConfig {
	return service.ExtractionConfig{MaxImageBytes: 1024, Bucket: "drawings", PresignSeconds: 900}
}

func extractInput(sessionID uuid.UUID) service.ExtractInput {
	img := pngContent()
	return service.ExtractInput{
		SessionID:   sessionID,
		FileName:    "cyl-80.png",
		ContentType: "image/png",
		Size:        int64(len(img)),
		Body:        bytes.NewReader(img),
	}
}

func TestExtractionService_Extract_Success(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID := uuid.New()

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(&port.VisionResponse{
		Text:      "BORE DIAMETER: 80 MM\nSTROKE LENGTH: 250 MM",
		ModelUsed: "qwen/qwen2.5-vl-72b-instruct:free",
	}, nil)
	f.extractions.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.State == domain.ExtractionStateParsed && e.Record != nil
	})).Return(nil)
	f.sessions.On("SetCurrentExtraction", mock.Anything, sessionID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	result, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionStateParsed, result.State)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, "not_available", result.MissingPolicy)
	assert.Empty(t, result.StorageKey)
	require.NotNil(t, result.Record)
	assert.Equal(t, 13, result.Record.Len())
	v, _ := result.Record.Get("BORE DIAMETER")
	assert.Equal(t, "80 MM", v)
	v, _ = result.Record.Get("FLUID")
	assert.Equal(t, "N/A", v)
	assert.NotNil(t, result.CompletedAt)

	f.sessions.AssertCalled(t, "SetCurrentExtraction", mock.Anything, sessionID, result.ID)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestExtractionService_Extract_BackendFailureLeavesCurrentRecord(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID := uuid.New()
	backendErr := parser.Unreachable("openrouter", errors.New("dial tcp: i/o timeout"))

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(nil, backendErr)
	f.extractions.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.State == domain.ExtractionStateBackendFailed &&
			e.Record == nil &&
			e.ErrorCode == "BACKEND_UNREACHABLE"
	})).Return(nil)

	result, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	assert.Nil(t, result)
	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendUnreachable, be.Kind)
	f.extractions.AssertExpectations(t)
	f.sessions.AssertNotCalled(t, "SetCurrentExtraction", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Extract_ArchivesDrawing(t *testing.T) {
	cfg := defaultExtractionConfig()
	cfg.ArchiveDrawings = true
	f := newExtractionFixture(cfg)
	sessionID := uuid.New()

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "drawings" && in.ContentType == "image/png"
	})).Return(&port.UploadOutput{}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(&port.VisionResponse{Text: "FLUID: OIL"}, nil)
	f.extractions.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.sessions.On("SetCurrentExtraction", mock.Anything, sessionID, mock.Anything).Return(nil)

	result, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	require.NoError(t, err)
	assert.Equal(t, "drawings/"+sessionID.String()+"/"+result.ID.String()+".png", result.StorageKey)
}

func TestExtractionService_Extract_ArchiveFailureIsNotFatal(t *testing.T) {
	cfg := defaultExtractionConfig()
	cfg.ArchiveDrawings = true
	f := newExtractionFixture(cfg)
	sessionID := uuid.New()

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket missing"))
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(&port.VisionResponse{Text: "FLUID: OIL"}, nil)
	f.extractions.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.sessions.On("SetCurrentExtraction", mock.Anything, sessionID, mock.Anything).Return(nil)

	result, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	require.NoError(t, err)
	assert.Empty(t, result.StorageKey)
}

func TestExtractionService_Extract_UnrecordedDrawingIsDeleted(t *testing.T) {
	cfg := defaultExtractionConfig()
	cfg.ArchiveDrawings = true
	f := newExtractionFixture(cfg)
	sessionID := uuid.New()
	keyPrefix := "drawings/" + sessionID.String() + "/"

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(&port.VisionResponse{Text: "FLUID: OIL"}, nil)
	f.extractions.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	f.storage.On("Delete", mock.Anything, "drawings", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, keyPrefix) && strings.HasSuffix(key, ".png")
	})).Return(nil)

	_, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	require.Error(t, err)
	f.storage.AssertNumberOfCalls(t, "Delete", 1)
	f.sessions.AssertNotCalled(t, "SetCurrentExtraction", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Extract_NothingToDeleteWithoutArchive(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID := uuid.New()

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Return(&port.VisionResponse{Text: "FLUID: OIL"}, nil)
	f.extractions.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	require.Error(t, err)
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Extract_Validation(t *testing.T) {
	sessionID := uuid.New()

	tests := []struct {
		name    string
		input   service.ExtractInput
		wantErr error
	}{
		{
			name:    "unsupported extension",
			input:   service.ExtractInput{SessionID: sessionID, FileName: "drawing.pdf", Body: bytes.NewReader(pngContent())},
			wantErr: domain.ErrUnsupportedFileType,
		},
		{
			name:    "declared size too large",
			input:   service.ExtractInput{SessionID: sessionID, FileName: "a.png", Size: 4096, Body: bytes.NewReader(pngContent())},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "body larger than limit",
			input:   service.ExtractInput{SessionID: sessionID, FileName: "a.png", Body: bytes.NewReader(make([]byte, 2048))},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "empty body",
			input:   service.ExtractInput{SessionID: sessionID, FileName: "a.png", Body: bytes.NewReader(nil)},
			wantErr: domain.ErrEmptyImage,
		},
		{
			name:    "not an image",
			input:   service.ExtractInput{SessionID: sessionID, FileName: "a.png", ContentType: "text/plain", Body: bytes.NewReader([]byte("hello"))},
			wantErr: domain.ErrUnsupportedFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExtractionFixture(defaultExtractionConfig())

			_, err := f.svc.Extract(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			f.backend.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
			f.extractions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExtractionService_Extract_UnknownSession(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID := uuid.New()
	f.sessions.On("GetByID", mock.Anything, sessionID).Return(nil, domain.ErrSessionNotFound)

	_, err := f.svc.Extract(context.Background(), extractInput(sessionID))

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	f.backend.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestExtractionService_Extract_OneAtATimePerSession(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID := uuid.New()

	started := make(chan struct{})
	release := make(chan struct{})

	f.sessions.On("GetByID", mock.Anything, sessionID).Return(&domain.Session{ID: sessionID}, nil)
	f.backend.On("Submit", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&port.VisionResponse{Text: "FLUID: OIL"}, nil).Once()
	f.extractions.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.sessions.On("SetCurrentExtraction", mock.Anything, sessionID, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Extract(context.Background(), extractInput(sessionID))
		done <- err
	}()

	<-started
	_, err := f.svc.Extract(context.Background(), extractInput(sessionID))
	assert.ErrorIs(t, err, domain.ErrExtractionInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestExtractionService_DrawingURL(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID, extractionID := uuid.New(), uuid.New()

	f.extractions.On("GetByID", mock.Anything, sessionID, extractionID).Return(&domain.Extraction{
		ID: extractionID, SessionID: sessionID, StorageKey: "drawings/x.png",
	}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "drawings", "drawings/x.png", int64(900)).Return("https://signed", nil)

	url, err := f.svc.DrawingURL(context.Background(), sessionID, extractionID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestExtractionService_DrawingURL_NotArchived(t *testing.T) {
	f := newExtractionFixture(defaultExtractionConfig())
	sessionID, extractionID := uuid.New(), uuid.New()

	f.extractions.On("GetByID", mock.Anything, sessionID, extractionID).Return(&domain.Extraction{ID: extractionID}, nil)

	_, err := f.svc.DrawingURL(context.Background(), sessionID, extractionID)

	assert.ErrorIs(t, err, domain.ErrDrawingNotArchived)
}

func TestBackendErrorCode(t *testing.T) {
	assert.Equal(t, "RATE_LIMITED", service.BackendErrorCode(
		parser.NewRateLimitError("x", parser.Rejected("x", http.StatusTooManyRequests, nil), 1)))
	assert.Equal(t, "BACKEND_REJECTED", service.BackendErrorCode(parser.Rejected("x", http.StatusForbidden, nil)))
	assert.Equal(t, "BACKEND_BAD_RESPONSE", service.BackendErrorCode(parser.BadResponse("x", errors.New("e"))))
	assert.Equal(t, "BACKEND_UNREACHABLE", service.BackendErrorCode(parser.Unreachable("x", errors.New("e"))))
	assert.Equal(t, "BACKEND_ERROR", service.BackendErrorCode(errors.New("other")))
}
