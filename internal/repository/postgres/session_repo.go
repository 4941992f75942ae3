package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"drawsheet/internal/domain"
	"drawsheet/internal/port"
)

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new PostgreSQL-backed SessionRepository.
func NewSessionRepo(db *sqlx.DB) port.SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, current_extraction_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID, session.CurrentExtractionID, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	err := r.db.GetContext(ctx, &session,
		"SELECT id, current_extraction_id, created_at, updated_at FROM sessions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	return &session, nil
}

// SetCurrentExtraction replaces the session's current record wholesale. The
// extraction must belong to the session and have parsed successfully.
func (r *sessionRepo) SetCurrentExtraction(ctx context.Context, sessionID, extractionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET current_extraction_id = $1, updated_at = $2
		 WHERE id = $3
		   AND EXISTS (SELECT 1 FROM extractions
		               WHERE id = $1 AND session_id = $3 AND state = $4)`,
		extractionID, time.Now().UTC(), sessionID, domain.ExtractionStateParsed)
	if err != nil {
		return fmt.Errorf("sessionRepo.SetCurrentExtraction: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
