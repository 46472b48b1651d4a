package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxBodyBytes caps a decoded request body
const MaxBodyBytes = 4 << 20

// DecodeJSON reads one JSON document from r into v and validates it
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{cause: errors.New("empty body")}
		}
		return &ValidationError{cause: fmt.Errorf("decode json: %w", err)}
	}
	return Validate(v)
}

// LoadYAMLFile reads a risk request (portfolio + market data) from a YAML file
// KnownFields(true): 오타/미사용 필드 즉시 실패
func LoadYAMLFile(path string) (*RiskRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeYAML(data)
}

// DecodeYAML decodes and validates a YAML risk request
func DecodeYAML(data []byte) (*RiskRequest, error) {
	var req RiskRequest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{cause: errors.New("empty document")}
		}
		return nil, &ValidationError{cause: fmt.Errorf("decode yaml: %w", err)}
	}

	if err := Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
