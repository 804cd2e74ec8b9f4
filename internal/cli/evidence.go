package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/synth"
	"github.com/spf13/cobra"
)

var (
	evidenceSchools []string
	evidenceAll     bool
	evidenceModel   string
)

// evidenceCmd represents the evidence command
var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Synthesise evidence documents from the raw facts",
	Long: `Evidence sends each school's raw-facts ledger to the synthesis model and
overwrites evidence/<slug>.md with the result. Every dimension is guaranteed
a "## <dimension>" section.

Example:
  schoolscope evidence --school example-school
  schoolscope evidence --all --model gpt-4o`,
	RunE: runEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)

	evidenceCmd.Flags().StringSliceVar(&evidenceSchools, "school", nil, "school name or slug (repeatable)")
	evidenceCmd.Flags().BoolVar(&evidenceAll, "all", false, "process every school")
	evidenceCmd.Flags().StringVar(&evidenceModel, "model", "", "override the synthesis model")
}

func runEvidence(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if evidenceModel != "" {
		a.cfg.Synthesis.Model = evidenceModel
	}

	schools, err := a.selectSchools(evidenceSchools, evidenceAll)
	if err != nil {
		return err
	}

	b, err := a.newBuilder()
	if err != nil {
		return err
	}

	outcomes := b.BuildAll(context.Background(), schools)
	printOutcomes("Evidence", outcomes)

	// A single named school is an explicit request, so its failure is fatal.
	if !evidenceAll && model.CountFailures(outcomes) > 0 {
		return fmt.Errorf("evidence build failed for %d school(s)", model.CountFailures(outcomes))
	}
	return nil
}

func (a *app) newBuilder() (*synth.Builder, error) {
	provider, err := a.newProvider()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "⚙️  Synthesising with %s\n", provider.Name())
	return synth.NewBuilder(a.layout, model.DimensionNames(a.dims), provider, a.cfg.Synthesis.Model, logger), nil
}
