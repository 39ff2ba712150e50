package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"nil", nil, "-"},
		{"empty string", "", "-"},
		{"string", "Acme", "Acme"},
		{"bool", true, "true"},
		{"integral float", float64(1714564800), "1714564800"},
		{"fraction", 2.5, "2.5"},
		{"other", []string{"a"}, "[a]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Cell(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "héll…", Truncate("héllo wörld", 5))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, []string{"ID", "NAME"}, [][]string{{"1", "Acme"}, {"22", "Beta"}}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID  NAME", lines[0])
	assert.Equal(t, "1   Acme", lines[1])
	assert.Equal(t, "22  Beta", lines[2])
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]any{"url": "https://a/?x=1&y=2"}, false))
	assert.Equal(t, "{\"url\":\"https://a/?x=1&y=2\"}\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintJSON(&buf, map[string]any{"a": 1}, true))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
