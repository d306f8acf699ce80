// Package extractorconfig parses and validates the ExtractorMap that
// defines which event payload fields are indexable per event type. It
// is deliberately free of Supervisor/Worker orchestration concerns so
// the hot-reload path in filtersupervisor can treat it as a pure
// function of its source.
package extractorconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// rawSpec mirrors the wire shape of a single field's extractor spec
// before it is converted into an eventfilter.ExtractorSpec.
type rawSpec struct {
	Kind         string `json:"kind"`
	Path         string `json:"path"`
	ExpectedType string `json:"expected_type"`
}

// Load resolves source into an ExtractorMap. source is either a
// filesystem path or an inline serialized document; selection is by
// heuristic: if source names a file that exists on disk, it is read and
// parsed as that file's contents, otherwise source itself is parsed as
// inline JSON. An empty source yields an empty ExtractorMap.
//
// The document may contain // line comments and trailing commas (JSONC)
// — the same extension Bureau's pipeline definitions use — stripped
// before unmarshaling.
func Load(source string) (eventfilter.ExtractorMap, error) {
	if strings.TrimSpace(source) == "" {
		return eventfilter.ExtractorMap{}, nil
	}

	data, err := resolveSource(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eventfilter.ErrConfigLoad, err)
	}

	extractorMap, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eventfilter.ErrConfigParse, err)
	}

	for eventType, fields := range extractorMap {
		if err := CheckFilterConfig(fields); err != nil {
			return nil, fmt.Errorf("%w: event type %q: %v", eventfilter.ErrConfigInvalid, eventType, err)
		}
	}

	return extractorMap, nil
}

// resolveSource decides whether source is a filesystem path or an
// inline document and returns its bytes.
func resolveSource(source string) ([]byte, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		return os.ReadFile(source)
	}
	return []byte(source), nil
}

func parse(data []byte) (eventfilter.ExtractorMap, error) {
	stripped := jsonc.ToJSON(data)

	var raw map[string]map[string]rawSpec
	if err := json.Unmarshal(stripped, &raw); err != nil {
		return nil, fmt.Errorf("parsing extractor map: %w", err)
	}

	extractorMap := make(eventfilter.ExtractorMap, len(raw))
	for eventType, rawFields := range raw {
		fields := make(eventfilter.FieldMap, len(rawFields))
		for fieldName, spec := range rawFields {
			converted, err := convertSpec(spec)
			if err != nil {
				return nil, fmt.Errorf("event type %q field %q: %w", eventType, fieldName, err)
			}
			fields[fieldName] = converted
		}
		extractorMap[eventType] = fields
	}

	return extractorMap, nil
}

func convertSpec(raw rawSpec) (eventfilter.ExtractorSpec, error) {
	var kind eventfilter.ExtractorKind
	switch raw.Kind {
	case "", "json_path":
		kind = eventfilter.ExtractorKindJSONPath
	default:
		return eventfilter.ExtractorSpec{}, fmt.Errorf("unknown extractor kind %q", raw.Kind)
	}

	var expectedType eventfilter.ExpectedType
	switch raw.ExpectedType {
	case "", "string":
		expectedType = eventfilter.ExpectedTypeString
	case "number":
		expectedType = eventfilter.ExpectedTypeNumber
	case "bool":
		expectedType = eventfilter.ExpectedTypeBool
	default:
		return eventfilter.ExtractorSpec{}, fmt.Errorf("unknown expected_type %q", raw.ExpectedType)
	}

	return eventfilter.ExtractorSpec{
		Kind:         kind,
		Path:         raw.Path,
		ExpectedType: expectedType,
	}, nil
}

// ForEventType returns the FieldMap for eventType, or an empty FieldMap
// if the type is unknown. Thin wrapper kept so callers need not import
// eventfilter just to call the accessor.
func ForEventType(extractorMap eventfilter.ExtractorMap, eventType string) eventfilter.FieldMap {
	return extractorMap.ForEventType(eventType)
}

// CheckFilterConfig validates that every ExtractorSpec in fields is
// well-formed: a known extractor kind and a consistent target type.
// An empty FieldMap is valid — a type may be known but have no
// indexable fields.
func CheckFilterConfig(fields eventfilter.FieldMap) error {
	for fieldName, spec := range fields {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", fieldName, err)
		}
	}
	return nil
}
