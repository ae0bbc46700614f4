package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tablewise/bistro-cli/internal/export"
	"github.com/tablewise/bistro-cli/internal/model"
	"github.com/tablewise/bistro-cli/internal/store"
)

var (
	recordsType   string
	recordsLimit  int
	recordsOffset int
	recordsJSON   bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List stored survey records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("assess"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		records, err := st.ListRecords(ctx, store.RecordFilter{
			BusinessType: model.BusinessType(recordsType),
			Limit:        recordsLimit,
			Offset:       recordsOffset,
		})
		if err != nil {
			return err
		}

		if recordsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tREVENUE\tLEVEL")
		for _, record := range records {
			a, err := st.GetAssessment(ctx, record.ID)
			if err != nil {
				a = nil // unassessed records still list
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				record.ID,
				record.BusinessType,
				export.Currency(record.MonthlyRevenue),
				levelSummary(a),
			)
		}
		return w.Flush()
	},
}

func init() {
	recordsCmd.Flags().StringVar(&recordsType, "type", "", "filter by business type")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 100, "max records to list")
	recordsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(recordsCmd)
}
