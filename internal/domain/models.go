package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Field is one (parameter, value) pair of an extracted record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is the schema-shaped result of one successful extraction.
// Fields are in schema order and cover exactly the schema's parameters.
type Record struct {
	Fields []Field
}

// Get returns the value for a parameter name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Names returns the parameter names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.Fields)
}

// MarshalJSON encodes the record as an ordered array of fields.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Fields)
}

// UnmarshalJSON decodes an ordered array of fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Fields)
}

// Value stores the record as JSONB.
func (r Record) Value() (driver.Value, error) {
	return r.MarshalJSON()
}

// Scan reads a JSONB record column.
func (r *Record) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.Fields = nil
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("domain.Record: cannot scan %T", src)
	}
}

// Session is the caller-owned context holding the current extracted record.
// CurrentExtractionID only moves on a successful extraction.
type Session struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	CurrentExtractionID *uuid.UUID `db:"current_extraction_id" json:"current_extraction_id"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Extraction is one request to turn a drawing image into a record.
type Extraction struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	SessionID     uuid.UUID       `db:"session_id" json:"session_id"`
	FileName      string          `db:"file_name" json:"file_name"`
	ContentType   string          `db:"content_type" json:"content_type"`
	FileSize      int64           `db:"file_size" json:"file_size"`
	StorageKey    string          `db:"storage_key" json:"storage_key,omitempty"`
	State         ExtractionState `db:"state" json:"state"`
	ModelUsed     string          `db:"model_used" json:"model_used"`
	Prompt        string          `db:"prompt" json:"-"`
	RawResponse   string          `db:"raw_response" json:"raw_response,omitempty"`
	Record        *Record         `db:"record" json:"record,omitempty"`
	MissingPolicy string          `db:"missing_policy" json:"missing_policy"`
	UnitsStripped bool            `db:"units_stripped" json:"units_stripped"`
	ErrorCode     string          `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage  string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at"`
}
