package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleveque/company-enricher/internal/app"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/tier"
)

func tierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tier REVENUE...",
		Short: "Classify revenue figures (USD) into tiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, arg := range args {
				revenue, err := strconv.ParseFloat(strings.ReplaceAll(arg, "_", ""), 64)
				if err != nil || revenue < 0 {
					return &model.ValidationError{Field: "revenue", Message: fmt.Sprintf("%q is not a non-negative number", arg)}
				}
				t := tier.Classify(&revenue)
				fmt.Fprintf(w, "%s\t%s\t%s\n", tier.FormatRevenue(&revenue), t, t.Description())
			}
			return w.Flush()
		},
	}
}

func statsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored results and recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			// Stats only reads the database, so no provider keys are needed.
			store, err := app.OpenStorage(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			companies, err := store.Companies.Count(ctx)
			if err != nil {
				return err
			}
			contacts, err := store.Contacts.Count(ctx)
			if err != nil {
				return err
			}
			calls, err := store.Calls.Count(ctx)
			if err != nil {
				return err
			}
			failed, err := store.Calls.CountFailed(ctx)
			if err != nil {
				return err
			}
			byTier, err := store.Companies.CountByTier(ctx)
			if err != nil {
				return err
			}
			runs, err := store.Runs.Latest(ctx, 10)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Database: %s\n", cfg.Storage.DatabasePath)
			fmt.Fprintf(out, "Companies analyzed: %d\n", companies)
			fmt.Fprintf(out, "Contacts enriched: %d\n", contacts)
			fmt.Fprintf(out, "Model calls: %d (%d failed)\n", calls, failed)

			if len(byTier) > 0 {
				fmt.Fprintln(out, "\nBy tier:")
				for _, tc := range byTier {
					fmt.Fprintf(out, "  %s: %d\n", tc.Tier, tc.Count)
				}
			}

			if len(runs) > 0 {
				fmt.Fprintln(out, "\nRecent runs:")
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, r := range runs {
					state := "running"
					switch {
					case r.Interrupted:
						state = "interrupted"
					case r.FinishedAt != nil:
						state = "finished"
					}
					fmt.Fprintf(w, "  %s\t%s\t%d/%d\t%s\t%s\n",
						r.ID, r.Kind, r.Completed, r.Total, state, r.StartedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			}
			return nil
		},
	}
}
