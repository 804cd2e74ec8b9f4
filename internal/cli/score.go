package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ppiankov/schoolscope/internal/catalog"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/score"
	"github.com/ppiankov/schoolscope/internal/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var explainSchool string

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the evidence documents and rewrite the table",
	Long: `Score reads evidence/<slug>.md for every school, scores each dimension
section with the keyword heuristic and rewrites data/schools.csv sorted by the
weighted overall score. Schools without evidence are skipped.

With --explain, the per-section inputs for one school are printed instead and
nothing is written.

Example:
  schoolscope score
  schoolscope score --explain example-school`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&explainSchool, "explain", "", "print the score breakdown for one school")
}

func newAggregator(a *app) (*score.Aggregator, error) {
	return score.NewAggregator(score.DefaultConfig().WithDimensions(a.dims), a.layout, logger)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	agg, err := newAggregator(a)
	if err != nil {
		return err
	}

	if explainSchool != "" {
		school, err := catalog.ResolveSchool(a.schools, explainSchool)
		if err != nil {
			return err
		}
		b, err := agg.ScoreSchool(school)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(b)
		if err != nil {
			return fmt.Errorf("error marshaling breakdown: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	rows, outcomes, err := agg.ScoreAll(a.schools)
	if err != nil {
		return err
	}
	printOutcomes("Scoring", outcomes)
	printRanking(a.dims, rows)
	return nil
}

// printRanking writes the ranked rows as an aligned table to stdout.
func printRanking(dims []model.Dimension, rows []model.ScoreRow) {
	if len(rows) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	header := table.Header(dims)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)

	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%.2f", r.School, r.Overall)
		for _, d := range dims {
			fmt.Fprintf(w, "\t%s", table.FormatScore(r.Scores[d.Name]))
		}
		fmt.Fprintln(w)
	}
}
