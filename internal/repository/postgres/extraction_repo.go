package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"drawsheet/internal/domain"
	"drawsheet/internal/port"
)

const extractionColumns = `id, session_id, file_name, content_type, file_size, storage_key,
	state, model_used, prompt, raw_response, record, missing_policy, units_stripped,
	error_code, error_message, created_at, completed_at`

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

// Create inserts a finished extraction. Extractions are written once, in a
// terminal state, and never updated.
func (r *extractionRepo) Create(ctx context.Context, e *domain.Extraction) error {
	if !e.State.Terminal() {
		return fmt.Errorf("extractionRepo.Create: extraction %s is %s, not finished", e.ID, e.State)
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO extractions (`+extractionColumns+`)
		 VALUES (:id, :session_id, :file_name, :content_type, :file_size, :storage_key,
		         :state, :model_used, :prompt, :raw_response, :record, :missing_policy, :units_stripped,
		         :error_code, :error_message, :created_at, :completed_at)`, e)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, sessionID, extractionID uuid.UUID) (*domain.Extraction, error) {
	var e domain.Extraction
	err := r.db.GetContext(ctx, &e,
		"SELECT "+extractionColumns+" FROM extractions WHERE id = $1 AND session_id = $2",
		extractionID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *extractionRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]domain.Extraction, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM extractions WHERE session_id = $1", sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.ListBySession count: %w", err)
	}

	var extractions []domain.Extraction
	err = r.db.SelectContext(ctx, &extractions,
		`SELECT `+extractionColumns+` FROM extractions
		 WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sessionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.ListBySession: %w", err)
	}
	return extractions, total, nil
}
