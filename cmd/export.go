package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/captiveadvisors/directory/internal/export"
	"github.com/captiveadvisors/directory/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export {advisors|leads}",
	Short:     "Export directory data to an XLSX workbook",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"advisors", "leads"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		out := exportOut
		if out == "" {
			out = args[0] + ".xlsx"
		}

		var count int
		switch args[0] {
		case "advisors":
			advisors, err := st.ListAdvisors(ctx, store.AdvisorFilter{Limit: 10000})
			if err != nil {
				return err
			}
			if err := export.WriteAdvisors(out, advisors); err != nil {
				return err
			}
			count = len(advisors)
		case "leads":
			leads, err := st.ListLeads(ctx, store.LeadFilter{Limit: 10000})
			if err != nil {
				return err
			}
			if err := export.WriteLeads(out, leads); err != nil {
				return err
			}
			count = len(leads)
		default:
			return eris.Errorf("unknown export target: %s", args[0])
		}

		fmt.Printf("wrote %d rows to %s\n", count, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <target>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
