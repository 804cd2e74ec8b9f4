package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/schoolscope/internal/grid"
	"github.com/spf13/cobra"
)

// gridCmd represents the grid command
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Refresh the scoring grid from the score table",
	Long: `Grid rewrites the GRID:BEGIN/GRID:END region of the scoring grid
document with one linked row per school in data/schools.csv. Content
outside the markers is left untouched.`,
	RunE: runGrid,
}

func init() {
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	return updateGrid(a)
}

func updateGrid(a *app) error {
	n, err := grid.NewProjector(a.dims, a.cfg.Grid.LinkBase, logger).Update(a.layout.TableFile, a.layout.GridFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Updated %s (%d rows)\n", a.layout.GridFile, n)
	return nil
}
