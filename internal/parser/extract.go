package parser

import (
	"context"

	"drawsheet/internal/domain"
	"drawsheet/internal/port"
	"drawsheet/internal/schema"
)

// Result is the outcome of one successful extraction.
type Result struct {
	Request  port.VisionRequest
	Response *port.VisionResponse
	Record   domain.Record
}

// Extractor runs the request/normalize pipeline against one backend.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	backend port.VisionBackend
	schema  schema.Schema
	opts    NormalizeOptions
}

// NewExtractor creates an Extractor for schema s.
func NewExtractor(backend port.VisionBackend, s schema.Schema, opts NormalizeOptions) *Extractor {
	if opts.Missing == "" {
		opts.Missing = MissingBlank
	}
	return &Extractor{backend: backend, schema: s, opts: opts}
}

// Schema returns the schema records are normalized against.
func (x *Extractor) Schema() schema.Schema {
	return x.schema
}

// Options returns the normalization options in effect.
func (x *Extractor) Options() NormalizeOptions {
	return x.opts
}

// Prepare validates the image and builds the backend request.
func (x *Extractor) Prepare(image []byte, contentType string) (port.VisionRequest, error) {
	return BuildRequest(image, contentType, x.schema, x.opts.Missing)
}

// Submit sends a prepared request. On a backend failure it returns the
// error unchanged and no record; normalization only runs on a genuine answer.
func (x *Extractor) Submit(ctx context.Context, req port.VisionRequest) (*Result, error) {
	resp, err := x.backend.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{
		Request:  req,
		Response: resp,
		Record:   Normalize(resp.Text, x.schema, x.opts),
	}, nil
}

// Extract is Prepare followed by Submit.
func (x *Extractor) Extract(ctx context.Context, image []byte, contentType string) (*Result, error) {
	req, err := x.Prepare(image, contentType)
	if err != nil {
		return nil, err
	}
	return x.Submit(ctx, req)
}
