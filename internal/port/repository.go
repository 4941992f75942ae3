package port

import (
	"context"

	"github.com/google/uuid"

	"drawsheet/internal/domain"
)

// SessionRepository defines the contract for session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	SetCurrentExtraction(ctx context.Context, sessionID, extractionID uuid.UUID) error
}

// ExtractionRepository defines the contract for extraction persistence.
// Query methods include sessionID so one session never reads another's records.
type ExtractionRepository interface {
	Create(ctx context.Context, extraction *domain.Extraction) error
	GetByID(ctx context.Context, sessionID, extractionID uuid.UUID) (*domain.Extraction, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]domain.Extraction, int, error)
}
