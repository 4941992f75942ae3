package handler

import (
	"time"

	"github.com/google/uuid"

	"drawsheet/internal/schema"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// SessionTokenResponse represents a started session.
type SessionTokenResponse struct {
	SessionID uuid.UUID `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expires_at" example:"2025-01-15T22:30:00Z"`
}

// SchemaResponse describes the parameter schema in effect.
type SchemaResponse struct {
	Name          string             `json:"name" example:"cylinder"`
	Parameters    []schema.Parameter `json:"parameters"`
	MissingPolicy string             `json:"missing_policy" example:"blank"`
	MissingValue  string             `json:"missing_value" example:""`
	StripUnits    bool               `json:"strip_units" example:"false"`
	Instruction   string             `json:"instruction"`
}

// DrawingURLResponse holds a presigned download link for an archived drawing.
type DrawingURLResponse struct {
	URL string `json:"url" example:"https://s3.amazonaws.com/drawsheet-drawings/drawings/...?X-Amz-Signature=..."`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
