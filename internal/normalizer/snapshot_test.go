package normalizer

import (
	"testing"

	"adscout/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestUnwrapSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		item     domain.RawAdItem
		expected map[string]any
	}{
		{"missing snapshot", domain.RawAdItem{"page_name": "Acme"}, map[string]any{}},
		{"nil item", nil, map[string]any{}},
		{"mapping", domain.RawAdItem{"snapshot": map[string]any{"caption": "acme.com"}}, map[string]any{"caption": "acme.com"}},
		{"json string", domain.RawAdItem{"snapshot": `{"caption":"acme.com"}`}, map[string]any{"caption": "acme.com"}},
		{"invalid json string", domain.RawAdItem{"snapshot": `{"caption":`}, map[string]any{}},
		{"json string of a list", domain.RawAdItem{"snapshot": `[{"caption":"acme.com"}]`}, map[string]any{}},
		{"json null string", domain.RawAdItem{"snapshot": `null`}, map[string]any{}},
		{"number", domain.RawAdItem{"snapshot": 42.0}, map[string]any{}},
		{"list", domain.RawAdItem{"snapshot": []any{map[string]any{"caption": "x"}}}, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnwrapSnapshot(tt.item))
		})
	}
}
