package normalizer

import (
	"encoding/json"

	"adscout/internal/domain"
)

const snapshotKey = "snapshot"

// UnwrapSnapshot returns the item's nested snapshot mapping. A snapshot sent
// as a JSON-encoded string is decoded; anything missing, malformed or not an
// object yields an empty mapping.
func UnwrapSnapshot(item domain.RawAdItem) map[string]any {
	switch snap := item[snapshotKey].(type) {
	case map[string]any:
		return snap
	case domain.RawAdItem:
		return snap
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(snap), &decoded); err != nil {
			return map[string]any{}
		}
		if m := asMapping(decoded); m != nil {
			return m
		}
	}
	return map[string]any{}
}
