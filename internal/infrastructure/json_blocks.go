package infrastructure

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ExtractJSONBlocks returns the parseable ```json fenced blocks of text in
// order. When no fenced block is found and the whole text is a JSON object,
// that text is the single block.
func ExtractJSONBlocks(text string) []json.RawMessage {
	var (
		blocks []string
		cur    []string
		inJSON bool
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		fence := strings.HasPrefix(trimmed, "```")

		switch {
		case fence && strings.Contains(strings.ToLower(trimmed), "json"):
			inJSON = true
			cur = nil
		case fence && inJSON:
			inJSON = false
			if len(cur) > 0 {
				blocks = append(blocks, strings.Join(cur, "\n"))
			}
			cur = nil
		case inJSON:
			cur = append(cur, line)
		}
	}

	if len(blocks) == 0 && strings.HasPrefix(strings.TrimSpace(text), "{") && json.Valid([]byte(text)) {
		blocks = append(blocks, text)
	}

	out := make([]json.RawMessage, 0, len(blocks))
	for _, b := range blocks {
		if json.Valid([]byte(b)) {
			out = append(out, json.RawMessage(strings.TrimSpace(b)))
		}
	}
	return out
}

var objectSchema = gojsonschema.NewStringLoader(`{"type": "object"}`)

// decodeObject checks doc against the object schema and decodes it.
func decodeObject(doc json.RawMessage) (map[string]any, error) {
	result, err := gojsonschema.Validate(objectSchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("not a JSON object: %s", strings.Join(msgs, "; "))
	}

	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode JSON object: %w", err)
	}
	return m, nil
}
