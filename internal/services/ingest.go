package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fttn/logproxy/internal/models"
	"gorm.io/gorm"
)

// IngestService validates inbound call-log submissions and appends them
// to the store. It is only invoked after the bearer credential has been
// validated.
type IngestService struct {
	db *gorm.DB
}

func NewIngestService(db *gorm.DB) *IngestService {
	return &IngestService{db: db}
}

// Ingest appends exactly one call-log record and returns its assigned id.
// functionName must be non-empty after trimming. data may be a JSON string
// (stored verbatim) or any structural JSON value (stored in canonical
// compact form with non-ASCII preserved).
func (s *IngestService) Ingest(functionName string, data json.RawMessage, ipAddress, httpMethod, headersJSON string) (uint, error) {
	functionName = strings.TrimSpace(functionName)
	if functionName == "" {
		return 0, &ValidationError{Field: "function", Message: "must be a non-empty string"}
	}
	if len(data) == 0 {
		return 0, &ValidationError{Field: "data", Message: "is required"}
	}

	normalized, err := NormalizeData(data)
	if err != nil {
		return 0, &ValidationError{Field: "data", Message: "must be valid JSON"}
	}

	if httpMethod == "" {
		httpMethod = "POST"
	}

	record := models.CallLog{
		FunctionName: functionName,
		Data:         normalized,
		IPAddress:    ipAddress,
		HTTPMethod:   httpMethod,
		Headers:      headersJSON,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return 0, &StorageError{Op: "ingest", Err: err}
	}

	return record.ID, nil
}

// NormalizeData converts the submitted data payload to its stored text
// form: a JSON string value is stored as-is, anything else is re-encoded
// as compact JSON without HTML escaping.
func NormalizeData(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return "", err
	}
	return MarshalUnescaped(v)
}

// MarshalUnescaped encodes v as compact JSON with HTML escaping disabled,
// so non-ASCII characters and URLs survive untouched.
func MarshalUnescaped(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encode appends a trailing newline
	return strings.TrimRight(buf.String(), "\n"), nil
}
