package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/ingest"
)

var (
	ingestSources []string
	ingestLimit   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Scrape advisor sources and add new listings to the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(ingestSources) > 0 {
			cfg.Ingest.Sources = ingestSources
		}
		if err := cfg.ValidateIngest(); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		chain, err := initScraper()
		if err != nil {
			return err
		}

		opts := ingest.Options{
			LimitPerSource: cfg.Ingest.LimitPerSource,
			CandidateDelay: time.Duration(cfg.Ingest.CandidateDelayMS) * time.Millisecond,
			SourceDelay:    time.Duration(cfg.Ingest.SourceDelayMS) * time.Millisecond,
		}
		if ingestLimit > 0 {
			opts.LimitPerSource = ingestLimit
		}

		sources := cfg.Ingest.Sources

		orch := ingest.New(chain, initRewriter(), st, opts)

		zap.L().Info("starting ingestion",
			zap.Strings("sources", sources),
			zap.Int("limit_per_source", opts.LimitPerSource),
		)

		report, err := orch.Run(ctx, sources)
		if err != nil {
			return err
		}

		for _, src := range report.Sources {
			fmt.Printf("%-50s found=%-4d added=%-4d skipped=%-4d errored=%d\n",
				src.Source, src.Found, src.Added, src.Skipped, src.Errored)
		}
		fmt.Printf("total: found=%d added=%d skipped=%d errored=%d\n",
			report.Found, report.Added, report.Skipped, report.Errored)

		return nil
	},
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestSources, "source", nil, "source URL(s) to scrape (default from config)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "max candidates per source (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
