package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"drawsheet/internal/config"
	"drawsheet/internal/domain"
	"drawsheet/internal/port"
)

const sessionAudience = "session"

// SessionClaims are the JWT claims identifying a session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"session_id"`
}

// SessionToken is returned when a session starts.
type SessionToken struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService owns the caller-side "current record" slot. The slot only
// moves when an extraction succeeds; failures leave it untouched.
type SessionService interface {
	Start(ctx context.Context) (*SessionToken, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	Current(ctx context.Context, sessionID uuid.UUID) (*domain.Extraction, error)
}

type sessionService struct {
	sessionRepo    port.SessionRepository
	extractionRepo port.ExtractionRepository
	cfg            config.SessionConfig
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	sessionRepo port.SessionRepository,
	extractionRepo port.ExtractionRepository,
	cfg config.SessionConfig,
) SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		extractionRepo: extractionRepo,
		cfg:            cfg,
	}
}

func (s *sessionService) Start(ctx context.Context) (*SessionToken, error) {
	session := &domain.Session{ID: uuid.New()}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("session.Start: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.Expiry)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{sessionAudience},
		},
		SessionID: session.ID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	log.Printf("sessionService.Start: session %s started", session.ID)
	return &SessionToken{SessionID: session.ID, Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *sessionService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(sessionAudience), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.SessionID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Current returns the session's most recent successful extraction.
func (s *sessionService) Current(ctx context.Context, sessionID uuid.UUID) (*domain.Extraction, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentExtractionID == nil {
		return nil, domain.ErrNoCurrentRecord
	}

	extraction, err := s.extractionRepo.GetByID(ctx, sessionID, *session.CurrentExtractionID)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionNotFound) {
			return nil, domain.ErrNoCurrentRecord
		}
		return nil, fmt.Errorf("session.Current: %w", err)
	}
	return extraction, nil
}
