package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		name     string
		item     map[string]any
		snapshot map[string]any
		expected any
	}{
		{
			name:     "single mapping",
			snapshot: map[string]any{"images": map[string]any{"url": "X"}},
			expected: "X",
		},
		{
			name:     "list with one mapping",
			snapshot: map[string]any{"images": []any{map[string]any{"url": "X"}}},
			expected: "X",
		},
		{
			name: "first element wins over later higher priority key",
			snapshot: map[string]any{"images": []any{
				map[string]any{"original_picture_url": "A"},
				map[string]any{"url": "B"},
			}},
			expected: "A",
		},
		{
			name: "key priority within one element",
			snapshot: map[string]any{"images": []any{
				map[string]any{"src": "S", "original_image_url": "O", "url": "U"},
			}},
			expected: "O",
		},
		{
			name: "empty values are skipped",
			snapshot: map[string]any{"images": []any{
				map[string]any{"original_image_url": "", "url": nil},
				map[string]any{"src": "S"},
			}},
			expected: "S",
		},
		{
			name:     "non mapping elements are ignored",
			snapshot: map[string]any{"images": []any{"junk", 3.0, map[string]any{"original_picture": "P"}}},
			expected: "P",
		},
		{
			name:     "thumbnail fallback",
			item:     map[string]any{"thumbnailUrl": "T"},
			snapshot: map[string]any{},
			expected: "T",
		},
		{
			name:     "item key order",
			item:     map[string]any{"image": "I", "image_url": "U"},
			snapshot: map[string]any{"images": "not-a-list"},
			expected: "U",
		},
		{
			name:     "nested beats item",
			item:     map[string]any{"imageUrl": "top"},
			snapshot: map[string]any{"images": map[string]any{"url": "nested"}},
			expected: "nested",
		},
		{
			name:     "nothing anywhere",
			item:     map[string]any{},
			snapshot: map[string]any{"images": []any{}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ImageURL(tt.item, tt.snapshot))
		})
	}
}

func TestVideoURL(t *testing.T) {
	tests := []struct {
		name     string
		item     map[string]any
		snapshot map[string]any
		expected any
	}{
		{
			name:     "nested hd preferred",
			snapshot: map[string]any{"videos": []any{map[string]any{"video_sd_url": "SD", "video_hd_url": "HD"}}},
			expected: "HD",
		},
		{
			name:     "nested single mapping",
			snapshot: map[string]any{"videos": map[string]any{"video_preview_url": "PREVIEW"}},
			expected: "PREVIEW",
		},
		{
			name:     "nested across elements",
			snapshot: map[string]any{"videos": []any{map[string]any{"video_hd_url": ""}, map[string]any{"src": "SRC"}}},
			expected: "SRC",
		},
		{
			name:     "item checked before snapshot for the same key",
			item:     map[string]any{"videoUrl": "ITEM"},
			snapshot: map[string]any{"videoUrl": "SNAP"},
			expected: "ITEM",
		},
		{
			name:     "earlier key on snapshot beats later key on item",
			item:     map[string]any{"video": "ITEM-VIDEO"},
			snapshot: map[string]any{"video_url": "SNAP-VIDEO-URL"},
			expected: "SNAP-VIDEO-URL",
		},
		{
			name:     "top level hd key on snapshot",
			item:     map[string]any{},
			snapshot: map[string]any{"video_hd_url": "HD"},
			expected: "HD",
		},
		{
			name:     "nothing",
			item:     map[string]any{"video": false},
			snapshot: map[string]any{"videos": nil},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VideoURL(tt.item, tt.snapshot))
		})
	}
}
