package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablewise/bistro-cli/internal/source"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull survey records from the upstream survey API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("sync"); err != nil {
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

		client := source.NewClient(source.Options{
			BaseURL:    cfg.Source.BaseURL,
			AdminKey:   cfg.Source.AdminKey,
			PageSize:   cfg.Source.PageSize,
			Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Source.Retries,
			RatePerSec: cfg.Source.RatePerSec,
		})

		records, err := client.FetchAll(ctx)
		if err != nil {
			return eris.Wrap(err, "fetch surveys")
		}

		n, err := st.SaveRecords(ctx, records)
		if err != nil {
			return eris.Wrap(err, "save records")
		}

		zap.L().Info("sync complete",
			zap.Int("fetched", len(records)),
			zap.Int("saved", n),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
