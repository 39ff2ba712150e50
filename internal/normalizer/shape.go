package normalizer

import (
	"encoding/json"

	"adscout/internal/domain"
)

// asMapping returns v as a mapping, or nil when it is not one.
func asMapping(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case domain.RawAdItem:
		return m
	default:
		return nil
	}
}

// asMappings coerces "one object, a list of objects, or nothing" into a
// sequence of mappings. A lone mapping becomes a one-element sequence;
// non-mapping list elements are dropped; anything else yields nil.
func asMappings(v any) []map[string]any {
	if m := asMapping(v); m != nil {
		return []map[string]any{m}
	}
	switch list := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, el := range list {
			if m := asMapping(el); m != nil {
				out = append(out, m)
			}
		}
		return out
	case []map[string]any:
		return list
	default:
		return nil
	}
}

// firstMapping returns the leading mapping of a sequence or the mapping
// itself. A sequence whose first element is not a mapping has no first
// mapping, even if later elements are mappings.
func firstMapping(v any) map[string]any {
	if m := asMapping(v); m != nil {
		return m
	}
	switch list := v.(type) {
	case []any:
		if len(list) > 0 {
			return asMapping(list[0])
		}
	case []map[string]any:
		if len(list) > 0 {
			return list[0]
		}
	}
	return nil
}

// truthy reports whether v counts as a present value for fallback purposes.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	case uint:
		return x != 0
	case uint64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case []map[string]any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case domain.RawAdItem:
		return len(x) > 0
	default:
		return true
	}
}

// firstTruthyKey scans keys in order and returns the first truthy value of m.
func firstTruthyKey(m map[string]any, keys ...string) any {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if v := m[k]; truthy(v) {
			return v
		}
	}
	return nil
}
