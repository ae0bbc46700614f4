package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablewise/bistro-cli/internal/export"
)

var (
	exportRecordID string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a record's assessment to an XLSX workbook",
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

		record, err := st.GetRecord(ctx, exportRecordID)
		if err != nil {
			return eris.Wrapf(err, "load record %s", exportRecordID)
		}

		// Prefer the stored assessment; fall back to a fresh one.
		a, err := st.GetAssessment(ctx, record.ID)
		if err != nil {
			eng, engErr := initEngine()
			if engErr != nil {
				return engErr
			}
			a = eng.Assess(*record)
		}

		if err := export.WriteWorkbook(exportOut, *record, a); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("record_id", record.ID),
			zap.String("path", exportOut),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRecordID, "record", "", "survey record ID to export (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "assessment.xlsx", "output workbook path")
	_ = exportCmd.MarkFlagRequired("record")
	rootCmd.AddCommand(exportCmd)
}
