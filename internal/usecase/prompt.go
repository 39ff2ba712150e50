package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MergeVariant returns a deep copy of base carrying variant as its only
// variant. The variant goes under instructions.variants when base has an
// instructions object, otherwise under a top-level variants key.
func MergeVariant(base map[string]any, variant any) (map[string]any, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("copy base spec: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("copy base spec: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if instructions, ok := doc["instructions"].(map[string]any); ok {
		instructions["variants"] = []any{variant}
	} else {
		doc["variants"] = []any{variant}
	}
	return doc, nil
}

// BuildPromptText renders the merged prompt document as the image model
// receives it. Non-ASCII and HTML characters are left unescaped.
func BuildPromptText(base map[string]any, variant any, indent bool) (string, error) {
	doc, err := MergeVariant(base, variant)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
