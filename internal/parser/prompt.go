package parser

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"drawsheet/internal/domain"
	"drawsheet/internal/port"
	"drawsheet/internal/schema"
)

// BuildInstruction returns the extraction instruction for a drawing. Every
// schema parameter appears on exactly one template line, in schema order,
// formatted NAME: [value] UNIT.
func BuildInstruction(s schema.Schema, policy MissingPolicy) string {
	var b strings.Builder
	b.WriteString("Analyze the engineering drawing and extract only the values that are clearly visible in the image.\n")
	b.WriteString("STRICT RULES:\n")
	fmt.Fprintf(&b, "1) If a value is missing or unclear, return %s for it. DO NOT estimate any values.\n", policy.Describe())
	b.WriteString("2) Convert values to the specified units where applicable.\n")
	b.WriteString("3) Where the placeholder lists choices, answer with exactly one of them.\n")
	b.WriteString("4) Return one line per parameter, in this exact order and format, with no other text:\n")

	params := s.Parameters()
	for i, p := range params {
		fmt.Fprintf(&b, "%s: %s", p.Name, placeholder(p))
		if p.HasUnit() {
			b.WriteString(" " + p.Unit)
		}
		if i < len(params)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// placeholder is the bracketed slot the backend is asked to fill in.
func placeholder(p schema.Parameter) string {
	if p.Hint != "" {
		return "[" + p.Hint + "]"
	}
	return "[value]"
}

// BuildRequest packages a drawing image and the instruction text into a
// backend-agnostic request descriptor. Only PNG and JPEG images are accepted;
// the type is sniffed from the bytes and the declared content type is used
// only when sniffing is inconclusive.
func BuildRequest(image []byte, contentType string, s schema.Schema, policy MissingPolicy) (port.VisionRequest, error) {
	if len(image) == 0 {
		return port.VisionRequest{}, domain.ErrEmptyImage
	}
	mimeType, err := imageMIMEType(image, contentType)
	if err != nil {
		return port.VisionRequest{}, err
	}
	return port.VisionRequest{
		Instruction: BuildInstruction(s, policy),
		MIMEType:    mimeType,
		Image:       image,
	}, nil
}

func imageMIMEType(image []byte, declared string) (string, error) {
	detected := mimetype.Detect(image)
	for ct := range domain.AllowedContentTypes {
		if detected.Is(ct) {
			return ct, nil
		}
	}
	// A conclusive sniff of some other format outranks the declared type.
	if !detected.Is("application/octet-stream") && !detected.Is("text/plain") {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, detected.String())
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if _, ok := domain.AllowedContentTypes[declared]; ok {
		return declared, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, detected.String())
}
