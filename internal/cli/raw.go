package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/schoolscope/internal/catalog"
	"github.com/ppiankov/schoolscope/internal/ledger"
	"github.com/ppiankov/schoolscope/internal/worker"
	"github.com/spf13/cobra"
)

var (
	rawSchools       []string
	rawDimensions    []string
	rawAll           bool
	rawAllDimensions bool
	concurrency      int
	llmProvider      string
	llmModel         string
	maxQueries       int
	noCache          bool
	rawTimeout       time.Duration
)

// rawCmd represents the raw command
var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Research raw facts into the school ledgers",
	Long: `Raw runs open-web research for each selected school and dimension and
appends the fact records to raw/<slug>-raw.md, then rebuilds the ledger's
source log from every citation in the document.

A failed unit is reported and the remaining units still run.

Example:
  schoolscope raw --school "Example School" --dimension academics
  schoolscope raw --all --concurrency 4
  schoolscope raw --all --dimension arts --llm-provider anthropic --llm-model claude-3-5-sonnet-latest`,
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)

	rawCmd.Flags().StringSliceVar(&rawSchools, "school", nil, "school name or slug (repeatable)")
	rawCmd.Flags().StringSliceVar(&rawDimensions, "dimension", nil, "dimension to refresh (repeatable; default: all)")
	rawCmd.Flags().BoolVar(&rawAll, "all", false, "process every school")
	rawCmd.Flags().BoolVar(&rawAllDimensions, "all-dimensions", false, "run every dimension even when --dimension is given")
	rawCmd.Flags().IntVar(&concurrency, "concurrency", 0, "schools processed in parallel (default: concurrency.workers)")
	rawCmd.Flags().DurationVar(&rawTimeout, "timeout", 0, "total timeout for the run (0 means none)")

	// Research flags
	rawCmd.Flags().IntVar(&maxQueries, "max-queries", 0, "search queries per dimension (default: research.max_queries)")
	rawCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")

	// LLM flags
	rawCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	rawCmd.Flags().StringVar(&llmModel, "llm-model", "", "research model name")
}

func runRaw(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	applyRawFlags(cmd, a)

	schools, err := a.selectSchools(rawSchools, rawAll)
	if err != nil {
		return err
	}

	requested := rawDimensions
	if rawAllDimensions {
		requested = nil
	}
	dims, err := catalog.ResolveDimensions(a.dims, requested)
	if err != nil {
		return err
	}

	provider, err := a.newProvider()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if rawTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rawTimeout)
		defer cancel()
	}

	fmt.Fprintf(os.Stderr, "⚙️  Researching %d school(s) × %d dimension(s) with %d worker(s) [%s/%s]\n",
		len(schools), len(dims), a.cfg.Concurrency.Workers, provider.Name(), a.cfg.Research.Model)

	p := ledger.NewPipeline(a.layout, a.dims, a.newResearcher(provider), logger)
	outcomes := worker.NewBatchProcessor(p, a.cfg.Concurrency.Workers).Process(ctx, schools, dims)

	printOutcomes("Raw research", outcomes)
	if allFailed(outcomes) {
		return fmt.Errorf("all %d research units failed", len(outcomes))
	}
	return nil
}

// applyRawFlags layers the research flags that were set over the config.
func applyRawFlags(cmd *cobra.Command, a *app) {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		a.cfg.Concurrency.Workers = concurrency
	}
	if flags.Changed("max-queries") {
		a.cfg.Research.MaxQueries = maxQueries
	}
	if flags.Changed("no-cache") {
		a.cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("llm-provider") {
		a.cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		a.cfg.LLM.Model = llmModel
		a.cfg.Research.Model = llmModel
	}
}
