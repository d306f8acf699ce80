package eventfilter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractorKind identifies the mechanism an ExtractorSpec uses to pull a
// value out of a raw event payload. Modeled as a tagged sum per design
// note "Dynamic extractor specs ... model them as a tagged sum over
// extractor kinds".
type ExtractorKind int

const (
	// ExtractorKindJSONPath extracts a value at a dotted JSON path
	// (e.g. "region" or "customer.id") from a JSON payload.
	ExtractorKindJSONPath ExtractorKind = iota
)

func (k ExtractorKind) String() string {
	switch k {
	case ExtractorKindJSONPath:
		return "json_path"
	default:
		return "unknown"
	}
}

// ExpectedType is the primitive type an ExtractorSpec's extracted value
// must have.
type ExpectedType int

const (
	ExpectedTypeString ExpectedType = iota
	ExpectedTypeNumber
	ExpectedTypeBool
)

func (t ExpectedType) String() string {
	switch t {
	case ExpectedTypeString:
		return "string"
	case ExpectedTypeNumber:
		return "number"
	case ExpectedTypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ExtractorSpec is an opaque structure (from the consumer's point of
// view) describing how to pull a typed value from a raw event payload.
type ExtractorSpec struct {
	Kind         ExtractorKind `json:"kind"`
	Path         string        `json:"path"`
	ExpectedType ExpectedType  `json:"expected_type"`
}

// Extract pulls the value for this spec out of a raw JSON payload.
// Returns an error if the payload is not a JSON object, the path does
// not resolve, or the resolved value does not match ExpectedType.
func (s ExtractorSpec) Extract(payload []byte) (interface{}, error) {
	switch s.Kind {
	case ExtractorKindJSONPath:
		return s.extractJSONPath(payload)
	default:
		return nil, fmt.Errorf("extractor: unsupported kind %q", s.Kind)
	}
}

func (s ExtractorSpec) extractJSONPath(payload []byte) (interface{}, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("extractor: payload is not a JSON object: %w", err)
	}

	segments := strings.Split(s.Path, ".")
	var current interface{} = root
	for _, segment := range segments {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("extractor: path %q does not resolve", s.Path)
		}
		value, ok := asMap[segment]
		if !ok {
			return nil, fmt.Errorf("extractor: field %q not present", segment)
		}
		current = value
	}

	return coerceExpectedType(current, s.ExpectedType)
}

func coerceExpectedType(value interface{}, expected ExpectedType) (interface{}, error) {
	switch expected {
	case ExpectedTypeString:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("extractor: expected string, got %T", value)
		}
		return v, nil
	case ExpectedTypeNumber:
		v, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("extractor: expected number, got %T", value)
		}
		return v, nil
	case ExpectedTypeBool:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("extractor: expected bool, got %T", value)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("extractor: unsupported expected type %q", expected)
	}
}

// Validate checks that the spec is well-formed: a known extractor kind,
// a non-empty path, and a known target type.
func (s ExtractorSpec) Validate() error {
	switch s.Kind {
	case ExtractorKindJSONPath:
	default:
		return fmt.Errorf("extractor: unknown kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("extractor: path cannot be empty")
	}
	switch s.ExpectedType {
	case ExpectedTypeString, ExpectedTypeNumber, ExpectedTypeBool:
	default:
		return fmt.Errorf("extractor: unknown expected type %q", s.ExpectedType)
	}
	return nil
}

// FieldMap maps field_name -> ExtractorSpec for a single event type.
type FieldMap map[string]ExtractorSpec

// ExtractorMap maps event_type -> FieldMap. It is the snapshot consumed
// by Filter Workers to know which payload fields are indexable for their
// event type.
type ExtractorMap map[string]FieldMap

// ForEventType returns the FieldMap for the given event type, or an
// empty FieldMap if the type is unknown.
func (m ExtractorMap) ForEventType(eventType string) FieldMap {
	if fields, ok := m[eventType]; ok {
		return fields
	}
	return FieldMap{}
}

// TypedEqual compares two extracted values for equality under the rules
// spec.md §4.C mandates: numeric types by value, strings by byte
// equality, booleans nominally.
func TypedEqual(extracted, expected interface{}) bool {
	switch e := extracted.(type) {
	case float64:
		switch want := expected.(type) {
		case float64:
			return e == want
		case int:
			return e == float64(want)
		default:
			return false
		}
	case string:
		want, ok := expected.(string)
		return ok && e == want
	case bool:
		want, ok := expected.(bool)
		return ok && e == want
	default:
		return false
	}
}
