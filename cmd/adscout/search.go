package main

import (
	"fmt"

	"adscout/internal/domain"
	"adscout/internal/output"

	"github.com/spf13/cobra"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		q            domain.SearchQuery
		since, until string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the ad library for ads mentioning a domain",
		Long: `Search the public ad library through the scraper and print normalized ads.

When --since and --until are both given, ads whose start date falls outside
the range are dropped. Ads with a missing or unparseable start date are kept.

Status values:
  active    Currently running ads (default)
  inactive  Stopped ads
  all       Both

Examples:
  adscout search --domain acme.com
  adscout search --domain acme.com --country DE --status all --count 50
  adscout search --domain "acme shoes" --exact --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseDateRange(since, until)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
			}
			q.DateRange = r

			result, err := c.app.Search.Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			return render(cmd, result, func() error {
				if err := printAds(cmd, result.Data); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%d ads (fetched %d, filtered out %d)\n", result.Total, result.Fetched, result.Filtered)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&q.Domain, "domain", "", "Domain or keyword to search for")
	cmd.Flags().StringVar(&q.Country, "country", "", "Country code (ISO 3166, default DEFAULT_COUNTRY)")
	cmd.Flags().StringVar(&q.Status, "status", domain.StatusActive, "Ad status: active, inactive or all")
	cmd.Flags().IntVar(&q.Count, "count", domain.DefaultCount, fmt.Sprintf("Number of ads to fetch (max %d)", domain.MaxCount))
	cmd.Flags().BoolVar(&q.ExactPhrase, "exact", false, "Match the domain as an exact phrase")
	cmd.Flags().StringVar(&since, "since", "", "Earliest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Latest start date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func printAds(cmd *cobra.Command, ads []domain.CanonicalAdRecord) error {
	rows := make([][]string, 0, len(ads))
	for _, ad := range ads {
		rows = append(rows, []string{
			output.Cell(ad.AdArchiveID),
			output.Truncate(output.Cell(ad.PageName), 30),
			output.Cell(ad.StartDate),
			output.Cell(ad.IsActive),
			output.Cell(ad.CTAText),
			output.Truncate(output.Cell(ad.LinkURL), 50),
		})
	}
	return output.PrintTable(cmd.OutOrStdout(), []string{"AD ID", "PAGE", "START", "ACTIVE", "CTA", "LINK"}, rows)
}
