package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ppiankov/schoolscope/internal/workspace"
	"github.com/spf13/cobra"
)

// schoolsCmd represents the schools command
var schoolsCmd = &cobra.Command{
	Use:   "schools",
	Short: "List configured schools and their documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME\tPHASE\tRAW\tEVIDENCE")
		for _, s := range a.schools {
			phase := s.Phase
			if phase == "" {
				phase = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Slug, s.Name, phase,
				mark(workspace.Exists(a.layout.RawFile(s.Slug))),
				mark(workspace.Exists(a.layout.EvidenceFile(s.Slug))))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(schoolsCmd)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "-"
}
