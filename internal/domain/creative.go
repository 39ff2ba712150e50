package domain

import (
	"maps"
	"slices"
)

// SourceImage is creative image data handed to the assistant.
type SourceImage struct {
	Name     string
	MIMEType string
	Data     []byte
}

// CreativeSpec is the assistant's analysis: a base image specification and
// a set of named variant objects that can each be merged into it.
type CreativeSpec struct {
	Base     map[string]any `json:"base"`
	Variants map[string]any `json:"variants"`
}

// VariantNames returns the variant keys, sorted.
func (s *CreativeSpec) VariantNames() []string {
	return slices.Sorted(maps.Keys(s.Variants))
}
