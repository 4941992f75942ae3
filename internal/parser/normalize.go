package parser

import (
	"fmt"
	"strings"

	"drawsheet/internal/domain"
	"drawsheet/internal/schema"
)

// MissingPolicy selects the sentinel written for parameters the backend did
// not report. It is the only place missing-value behavior is decided.
type MissingPolicy string

const (
	MissingBlank        MissingPolicy = "blank"
	MissingNotAvailable MissingPolicy = "not_available"
)

// Sentinel returns the placeholder value for a missing parameter.
func (p MissingPolicy) Sentinel() string {
	if p == MissingNotAvailable {
		return "N/A"
	}
	return ""
}

// Describe returns the phrase used in the instruction text for this policy.
func (p MissingPolicy) Describe() string {
	if p == MissingNotAvailable {
		return `"N/A"`
	}
	return "an empty value"
}

// ParseMissingPolicy accepts the configuration spellings of a policy.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blank", "empty":
		return MissingBlank, nil
	case "not_available", "na", "n/a":
		return MissingNotAvailable, nil
	default:
		return "", fmt.Errorf("unknown missing policy: %s", s)
	}
}

// NormalizeOptions configures Normalize.
type NormalizeOptions struct {
	Missing MissingPolicy
	// StripUnits keeps only the first whitespace-delimited token of values
	// for parameters that declare a unit.
	StripUnits bool
}

const (
	separator   = schema.Separator
	valueCutset = "*`"
)

// Normalize converts a raw backend answer into a record covering exactly the
// schema's parameters, in schema order. It never fails: lines without a
// separator and keys outside the schema are ignored, and every parameter the
// text does not report gets the policy's sentinel.
func Normalize(raw string, s schema.Schema, opts NormalizeOptions) domain.Record {
	reported := scanLines(raw)
	sentinel := opts.Missing.Sentinel()

	params := s.Parameters()
	fields := make([]domain.Field, 0, len(params))
	for _, p := range params {
		value, ok := reported[p.Name]
		switch {
		case !ok, echoesPlaceholder(value, p):
			value = sentinel
		case opts.StripUnits && p.HasUnit():
			value = firstToken(value)
		}
		fields = append(fields, domain.Field{Name: p.Name, Value: value})
	}
	return domain.Record{Fields: fields}
}

// scanLines collects KEY: value pairs. Later lines override earlier ones;
// a blank value counts as not reported.
func scanLines(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(line, separator)
		if !found {
			continue
		}
		key = schema.CanonicalName(key)
		value = canonicalValue(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func canonicalValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, valueCutset)
	return strings.TrimSpace(value)
}

// echoesPlaceholder reports whether the backend copied the template slot
// instead of answering.
func echoesPlaceholder(value string, p schema.Parameter) bool {
	slot := placeholder(p)
	return len(value) >= len(slot) && strings.EqualFold(value[:len(slot)], slot)
}

func firstToken(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return value
	}
	return fields[0]
}

// Render writes a record back out as KEY: value lines, the same grammar the
// backend is asked to produce.
func Render(r domain.Record) string {
	var b strings.Builder
	for _, f := range r.Fields {
		b.WriteString(f.Name)
		b.WriteString(separator)
		if f.Value != "" {
			b.WriteByte(' ')
			b.WriteString(f.Value)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
