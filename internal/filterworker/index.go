package filterworker

import (
	"strconv"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// subRef identifies one subscription within one subscriber's set. It is
// comparable so it can be used directly as a map key.
type subRef struct {
	subscriberID string
	subKey       string
}

// invertedIndex accelerates matching by mapping (field_name, value) to
// the set of subscriptions that require exactly that equality. It is a
// deterministic function of the Worker's by_subscriber map and current
// FieldMap (spec.md §3 invariant) and is rebuilt wholesale on every
// RefreshSubscriptions and ReloadConfiguration — it is never read or
// written outside the Worker's mailbox goroutine, so it needs no lock
// of its own.
type invertedIndex struct {
	// byFieldValue[fieldName][value] -> subscriptions requiring that
	// field to equal that value.
	byFieldValue map[string]map[interface{}]map[subRef]struct{}

	// requiredCount[ref] is the number of distinct (field, value)
	// requirements ref's subscription has; ref matches an event once
	// that many distinct requirements have been satisfied.
	requiredCount map[subRef]int

	// alwaysMatch holds subscriptions with no constraints — they match
	// every event of the type unconditionally.
	alwaysMatch map[subRef]struct{}
}

func newInvertedIndex() *invertedIndex {
	return &invertedIndex{
		byFieldValue:  make(map[string]map[interface{}]map[subRef]struct{}),
		requiredCount: make(map[subRef]int),
		alwaysMatch:   make(map[subRef]struct{}),
	}
}

// add indexes one subscription against fieldMap. A subscription whose
// constraints reference a field absent from fieldMap is inert: it is
// deliberately left out of the index so it can never match, per
// spec.md §4.C ("If a constraint's field_name is absent from field_map,
// the subscription does not match").
func (idx *invertedIndex) add(ref subRef, sub eventfilter.Subscription, fieldMap eventfilter.FieldMap) {
	if len(sub.Constraints) == 0 {
		idx.alwaysMatch[ref] = struct{}{}
		return
	}

	for _, c := range sub.Constraints {
		if _, ok := fieldMap[c.FieldName]; !ok {
			return // inert: at least one field is not indexable right now
		}
	}

	seen := make(map[string]struct{})
	count := 0
	for _, c := range sub.Constraints {
		key := c.FieldName + "\x00" + valueKey(c.ExpectedValue)
		if _, already := seen[key]; already {
			continue // duplicate identical constraint: count once
		}
		seen[key] = struct{}{}
		count++

		valueIndex, ok := idx.byFieldValue[c.FieldName]
		if !ok {
			valueIndex = make(map[interface{}]map[subRef]struct{})
			idx.byFieldValue[c.FieldName] = valueIndex
		}
		normalized := normalizeValue(c.ExpectedValue)
		refs, ok := valueIndex[normalized]
		if !ok {
			refs = make(map[subRef]struct{})
			valueIndex[normalized] = refs
		}
		refs[ref] = struct{}{}
	}

	idx.requiredCount[ref] = count
}

// matchSubscribers evaluates payload (via fieldMap's extractors) and
// returns the set of subscriber IDs with at least one satisfied
// subscription, deduplicated so a subscriber with several matching
// subscriptions still appears once. extractionErrors counts per-field
// extraction failures.
func (idx *invertedIndex) matchSubscribers(payload []byte, fieldMap eventfilter.FieldMap) (matched map[string]struct{}, extractionErrors int) {
	matched = make(map[string]struct{})
	satisfied := make(map[subRef]int)

	for fieldName, valueIndex := range idx.byFieldValue {
		spec, ok := fieldMap[fieldName]
		if !ok {
			continue
		}
		value, err := spec.Extract(payload)
		if err != nil {
			extractionErrors++
			continue
		}
		for ref := range valueIndex[normalizeValue(value)] {
			satisfied[ref]++
		}
	}

	for ref, count := range satisfied {
		if count == idx.requiredCount[ref] {
			matched[ref.subscriberID] = struct{}{}
		}
	}
	for ref := range idx.alwaysMatch {
		matched[ref.subscriberID] = struct{}{}
	}

	return matched, extractionErrors
}

func normalizeValue(value interface{}) interface{} {
	if i, ok := value.(int); ok {
		return float64(i)
	}
	return value
}

func valueKey(value interface{}) string {
	switch v := normalizeValue(value).(type) {
	case string:
		return "s:" + v
	case float64:
		return "f:" + strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "b:true"
		}
		return "b:false"
	default:
		return "?"
	}
}
