package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// IsJSON returns true when output should be JSON:
//   - stdout is not a TTY (piped)
//   - OR --json or --pretty flag is set
func IsJSON(cmd *cobra.Command) bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return true
	}
	j, _ := cmd.Flags().GetBool("json")
	p, _ := cmd.Flags().GetBool("pretty")
	return j || p
}

// IsPretty returns true when JSON should be indented.
func IsPretty(cmd *cobra.Command) bool {
	p, _ := cmd.Flags().GetBool("pretty")
	if !p {
		j, _ := cmd.Flags().GetBool("json")
		if j && isatty.IsTerminal(os.Stdout.Fd()) {
			return true
		}
	}
	return p
}

// PrintJSON encodes v as JSON to w.
func PrintJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// PrintTable writes a tab-aligned table to w.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Cell renders a loosely-typed record value for a table column.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Truncate shortens a string to maxLen characters, adding "…" if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
