package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"adscout/internal/domain"
	"adscout/internal/output"

	"github.com/spf13/cobra"
)

func newAdsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ads",
		Aliases: []string{"ad"},
		Short:   "Manage ads saved in a collection",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <collection>",
			Short: "List saved ads, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ads, err := c.app.Collections.ListAds(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return render(cmd, ads, func() error {
					return printSavedAds(cmd, ads)
				})
			},
		},
		newAdsSaveCmd(c),
		&cobra.Command{
			Use:   "delete <collection> <id>",
			Short: "Delete a saved ad by its row id",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("%w: invalid ad id %q", domain.ErrInvalidRequest, args[1])
				}
				if err := c.app.Collections.DeleteAd(cmd.Context(), args[0], id); err != nil {
					return err
				}
				return render(cmd, map[string]any{"deleted": id}, func() error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted ad %d from %s\n", id, args[0])
					return err
				})
			},
		},
	)

	return cmd
}

// saveOutcome reports one record of an ads save run.
type saveOutcome struct {
	AdArchiveID any    `json:"ad_archive_id"`
	ID          int64  `json:"id,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func newAdsSaveCmd(c *cli) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "save <collection> <file>",
		Short: "Save canonical ad records into a collection",
		Long: `Save canonical ad records into a collection. The file holds one record, an
array of records, or the JSON output of "adscout search". Use - for stdin.

Records already in the collection are reported as duplicates and skipped.

Examples:
  adscout ads save ads_springsale ad.json --notes "strong hook"
  adscout search --domain acme.com --json | adscout ads save ads_springsale -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			records, err := decodeRecords(data)
			if err != nil {
				return err
			}

			outcomes := make([]saveOutcome, 0, len(records))
			var failed int
			for _, rec := range records {
				o := saveOutcome{AdArchiveID: rec.AdArchiveID, Status: "saved"}

				saved, err := c.app.Collections.SaveAd(cmd.Context(), args[0], rec, notes)
				switch {
				case err == nil:
					o.ID = saved.ID
				case errors.Is(err, domain.ErrAdAlreadySaved):
					o.Status = "duplicate"
				case errors.Is(err, domain.ErrCollectionNotFound):
					return err
				default:
					o.Status = "error"
					o.Error = err.Error()
					failed++
				}
				outcomes = append(outcomes, o)
			}

			if err := render(cmd, outcomes, func() error {
				rows := make([][]string, 0, len(outcomes))
				for _, o := range outcomes {
					id := "-"
					if o.ID != 0 {
						id = strconv.FormatInt(o.ID, 10)
					}
					rows = append(rows, []string{output.Cell(o.AdArchiveID), id, o.Status, output.Cell(o.Error)})
				}
				return output.PrintTable(cmd.OutOrStdout(), []string{"AD ID", "ID", "STATUS", "ERROR"}, rows)
			}); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d ads could not be saved", failed, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes stored with every saved ad")

	return cmd
}

// decodeRecords accepts a record object, an array of them, or a search result.
func decodeRecords(data []byte) ([]domain.CanonicalAdRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode ads: %w", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		if inner, ok := obj["data"].([]any); ok {
			doc = inner
		} else {
			return []domain.CanonicalAdRecord{domain.RecordFromMap(obj)}, nil
		}
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an ad object or an array of ads", domain.ErrInvalidRequest)
	}

	records := make([]domain.CanonicalAdRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", domain.ErrInvalidRequest, i)
		}
		records = append(records, domain.RecordFromMap(m))
	}
	return records, nil
}

func printSavedAds(cmd *cobra.Command, ads []domain.SavedAd) error {
	rows := make([][]string, 0, len(ads))
	for _, ad := range ads {
		rows = append(rows, []string{
			strconv.FormatInt(ad.ID, 10),
			output.Cell(ad.Ad.AdArchiveID),
			output.Truncate(output.Cell(ad.Ad.PageName), 30),
			output.Cell(ad.Ad.StartDate),
			output.Truncate(output.Cell(ad.Notes), 30),
			ad.SavedAt.Local().Format(time.DateTime),
		})
	}
	return output.PrintTable(cmd.OutOrStdout(), []string{"ID", "AD ID", "PAGE", "START", "NOTES", "SAVED"}, rows)
}
