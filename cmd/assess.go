package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tablewise/bistro-cli/internal/engine"
	"github.com/tablewise/bistro-cli/internal/model"
	"github.com/tablewise/bistro-cli/internal/store"
)

var (
	assessRecordID    string
	assessAll         bool
	assessSave        bool
	assessConcurrency int
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess stored survey records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("assess"); err != nil {
			return err
		}
		if assessRecordID == "" && !assessAll {
			return eris.New("either --record or --all is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		eng, err := initEngine()
		if err != nil {
			return err
		}

		if assessAll {
			return assessAllRecords(ctx, st, eng)
		}

		record, err := st.GetRecord(ctx, assessRecordID)
		if err != nil {
			return eris.Wrapf(err, "load record %s", assessRecordID)
		}

		a := eng.Assess(*record)
		if assessSave {
			if err := st.SaveAssessment(ctx, a); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

// assessAllRecords fans assessment out over every stored record. Scoring
// is pure CPU work, so individual failures only come from persistence
// and never abort the batch.
func assessAllRecords(ctx context.Context, st store.Store, eng *engine.Engine) error {
	records, err := st.ListRecords(ctx, store.RecordFilter{Limit: 10_000})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		zap.L().Info("no records to assess")
		return nil
	}

	zap.L().Info("assessing records",
		zap.Int("records", len(records)),
		zap.Int("concurrency", assessConcurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(assessConcurrency)

	var succeeded, failed atomic.Int64
	for _, record := range records {
		g.Go(func() error {
			log := zap.L().With(zap.String("record_id", record.ID))

			a := eng.Assess(record)
			if assessSave {
				if err := st.SaveAssessment(gctx, a); err != nil {
					failed.Add(1)
					log.Error("save assessment failed", zap.Error(err))
					return nil // don't abort the batch on one record
				}
			}

			succeeded.Add(1)
			log.Info("record assessed",
				zap.Int("score", a.Composite.Score),
				zap.String("level", string(a.Composite.Level)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "assess batch")
	}

	zap.L().Info("assessment batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// levelSummary is reused by records listing to show the latest verdict.
func levelSummary(a *model.Assessment) string {
	if a == nil {
		return "-"
	}
	return string(a.Composite.Level)
}

func init() {
	assessCmd.Flags().StringVar(&assessRecordID, "record", "", "survey record ID to assess")
	assessCmd.Flags().BoolVar(&assessAll, "all", false, "assess every stored record")
	assessCmd.Flags().BoolVar(&assessSave, "save", false, "persist assessments to the store")
	assessCmd.Flags().IntVar(&assessConcurrency, "concurrency", 8, "max concurrent assessments for --all")
	rootCmd.AddCommand(assessCmd)
}
