package port

import (
	"context"
	"encoding/base64"
)

// VisionRequest is the backend-agnostic request descriptor produced by the
// prompt builder: an instruction plus one embedded image.
type VisionRequest struct {
	Instruction string
	MIMEType    string
	Image       []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (r VisionRequest) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Image)
}

// DataURI returns the image as a data:<mime>;base64,<payload> URI.
func (r VisionRequest) DataURI() string {
	return "data:" + r.MIMEType + ";base64," + r.Base64()
}

// VisionResponse is the raw free-text answer from a vision backend.
type VisionResponse struct {
	Text      string
	ModelUsed string
	Provider  string
}

// VisionBackend submits a drawing and instruction to an external vision model.
// Implementations return a *parser.BackendError when the call itself fails.
type VisionBackend interface {
	Submit(ctx context.Context, req VisionRequest) (*VisionResponse, error)
}
