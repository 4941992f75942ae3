// Package noop is an ObjectStorage that keeps nothing. It is the default
// when no archive bucket is configured.
package noop

import (
	"context"
	"io"

	"drawsheet/internal/domain"
	"drawsheet/internal/port"
)

type Storage struct{}

func New() *Storage {
	return &Storage{}
}

var _ port.ObjectStorage = (*Storage)(nil)

func (s *Storage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body != nil {
		if _, err := io.Copy(io.Discard, input.Body); err != nil {
			return nil, err
		}
	}
	return &port.UploadOutput{}, nil
}

func (s *Storage) Delete(context.Context, string, string) error {
	return nil
}

func (s *Storage) GetPresignedURL(context.Context, string, string, int64) (string, error) {
	return "", domain.ErrNotFound
}

func (s *Storage) Ping(context.Context, string) error {
	return nil
}
