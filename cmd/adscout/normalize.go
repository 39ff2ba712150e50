package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"adscout/internal/domain"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(c *cli) *cobra.Command {
	var since, until string

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Normalize a saved scraper dataset",
		Long: `Normalize a JSON array of raw scraper items into canonical ad records.
Use - to read the array from stdin.

Examples:
  adscout normalize dataset.json
  adscout normalize dataset.json --since 2024-01-01 --until 2024-12-31 --json
  cat dataset.json | adscout normalize -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseDateRange(since, until)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var raw []domain.RawAdItem
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("expected a JSON array of ad objects: %w", err)
			}

			result := c.app.Search.Normalize(cmd.Context(), raw, r)

			return render(cmd, result, func() error {
				if err := printAds(cmd, result.Data); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%d ads (filtered out %d)\n", result.Total, result.Filtered)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Earliest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Latest start date (YYYY-MM-DD)")

	return cmd
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
