package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/schoolscope/internal/grid"
	"github.com/ppiankov/schoolscope/internal/ledger"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/synth"
	"github.com/ppiankov/schoolscope/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// fullRunCmd represents the full-run command
var fullRunCmd = &cobra.Command{
	Use:   "full-run",
	Short: "Run research, evidence, scoring and the grid end to end",
	Long: `Full-run executes every stage for every school and dimension:
raw research, evidence synthesis, scoring and the grid refresh.

Failed units are reported and later stages still run on whatever the
earlier stages produced.`,
	RunE: runFullRun,
}

func init() {
	rootCmd.AddCommand(fullRunCmd)

	fullRunCmd.Flags().IntVar(&concurrency, "concurrency", 0, "schools researched in parallel (default: concurrency.workers)")
	fullRunCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
}

func runFullRun(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		a.cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("no-cache") {
		a.cfg.Cache.Enabled = !noCache
	}

	provider, err := a.newProvider()
	if err != nil {
		return err
	}
	ctx := context.Background()
	dims := model.DimensionNames(a.dims)

	fmt.Fprintf(os.Stderr, "⚙️  [1/4] Raw research\n")
	p := ledger.NewPipeline(a.layout, a.dims, a.newResearcher(provider), logger)
	printOutcomes("Raw research", worker.NewBatchProcessor(p, a.cfg.Concurrency.Workers).Process(ctx, a.schools, dims))

	fmt.Fprintf(os.Stderr, "⚙️  [2/4] Evidence\n")
	b := synth.NewBuilder(a.layout, dims, provider, a.cfg.Synthesis.Model, logger)
	printOutcomes("Evidence", b.BuildAll(ctx, a.schools))

	fmt.Fprintf(os.Stderr, "⚙️  [3/4] Scoring\n")
	agg, err := newAggregator(a)
	if err != nil {
		return err
	}
	rows, outcomes, err := agg.ScoreAll(a.schools)
	if err != nil {
		return err
	}
	printOutcomes("Scoring", outcomes)
	printRanking(a.dims, rows)

	fmt.Fprintf(os.Stderr, "⚙️  [4/4] Grid\n")
	if err := updateGrid(a); err != nil {
		if errors.Is(err, grid.ErrTableMissing) {
			logger.Warn("No score table; grid not updated", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}
