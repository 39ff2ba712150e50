package main

import (
	"fmt"
	"time"

	"adscout/internal/domain"
	"adscout/internal/output"

	"github.com/spf13/cobra"
)

func newCollectionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "Manage collections of saved ads",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List collections, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				collections, err := c.app.Collections.ListCollections(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd, collections, func() error {
					return printCollections(cmd, collections)
				})
			},
		},
		newCollectionsCreateCmd(c),
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a collection with its saved ads and image records",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.Collections.DeleteCollection(cmd.Context(), args[0]); err != nil {
					return err
				}
				return render(cmd, map[string]string{"deleted": args[0]}, func() error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s\n", args[0])
					return err
				})
			},
		},
	)

	return cmd
}

func newCollectionsCreateCmd(c *cli) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Long: `Create a collection. The stored name is "ads_" followed by the lowercased
letters, digits and underscores of <name>; a timestamp is appended if that
name is taken.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := c.app.Collections.CreateCollection(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			return render(cmd, col, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Created collection %s\n", col.Name)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Free-form description")

	return cmd
}

func printCollections(cmd *cobra.Command, collections []domain.Collection) error {
	rows := make([][]string, 0, len(collections))
	for _, col := range collections {
		rows = append(rows, []string{
			col.Name,
			output.Truncate(col.DisplayName(), 40),
			col.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return output.PrintTable(cmd.OutOrStdout(), []string{"NAME", "DESCRIPTION", "CREATED"}, rows)
}
