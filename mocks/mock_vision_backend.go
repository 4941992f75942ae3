package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"drawsheet/internal/port"
)

// MockVisionBackend is a mock implementation of port.VisionBackend.
type MockVisionBackend struct {
	mock.Mock
}

func (m *MockVisionBackend) Submit(ctx context.Context, req port.VisionRequest) (*port.VisionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.VisionResponse), args.Error(1)
}
