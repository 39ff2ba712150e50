package main

import (
	"context"
	"fmt"

	"adscout/internal/app"
	"adscout/internal/output"
	"adscout/pkg/config"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// cli carries the application built in PersistentPreRunE to every command.
type cli struct {
	app      *app.App
	registry *prometheus.Registry
	logLevel string
}

func run(ctx context.Context, args []string) error {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "adscout",
		Short: "adscout searches the public ad library and keeps collections of ads",
		Long: `adscout searches the public ad library for ads that mention a domain,
normalizes the scraped records and saves them into local collections.

Configuration comes from the environment (or a .env file):
  APIFY_TOKEN     token for the ad-library scraper
  DATABASE_PATH   SQLite file for collections (default saved_ads.db)
  LOG_LEVEL       log level for stderr output

Examples:
  adscout search --domain acme.com --country GB --since 2024-01-01 --until 2024-06-30
  adscout normalize dataset.json --json
  adscout collections create "Spring Sale"
  adscout search --domain acme.com --json | adscout ads save ads_springsale -
  adscout serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().Bool("json", false, "Force JSON output")
	root.PersistentFlags().Bool("pretty", false, "Force pretty-printed JSON output (implies --json)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override LOG_LEVEL")

	root.AddCommand(
		newSearchCmd(c),
		newNormalizeCmd(c),
		newCollectionsCmd(c),
		newAdsCmd(c),
		newServeCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	// stdout is reserved for command output.
	log := logger.NewWithOutput(cfg.Logging.Level, cmd.ErrOrStderr())

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.app, err = app.New(cmd.Context(), cfg, log, metrics.NewWithRegistry(c.registry))
	return err
}

// render writes v as JSON when requested or piped, otherwise calls table.
func render(cmd *cobra.Command, v any, table func() error) error {
	if output.IsJSON(cmd) {
		return output.PrintJSON(cmd.OutOrStdout(), v, output.IsPretty(cmd))
	}
	return table()
}
