package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"drawsheet/internal/domain"
	"drawsheet/internal/schema"
	"drawsheet/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, input service.ExtractInput) (*domain.Extraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) Get(ctx context.Context, sessionID, extractionID uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, sessionID, extractionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) List(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]domain.Extraction, int, error) {
	args := m.Called(ctx, sessionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Extraction), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) DrawingURL(ctx context.Context, sessionID, extractionID uuid.UUID) (string, error) {
	args := m.Called(ctx, sessionID, extractionID)
	return args.String(0), args.Error(1)
}

func (m *MockExtractionService) Schema() schema.Schema {
	args := m.Called()
	return args.Get(0).(schema.Schema)
}
