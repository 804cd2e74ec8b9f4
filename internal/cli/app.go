package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/schoolscope/internal/cache"
	"github.com/ppiankov/schoolscope/internal/catalog"
	"github.com/ppiankov/schoolscope/internal/llm"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/research"
	"github.com/ppiankov/schoolscope/internal/util"
	"github.com/ppiankov/schoolscope/internal/worker"
	"github.com/ppiankov/schoolscope/internal/workspace"
	"github.com/spf13/viper"
)

// app is the loaded state every command works from.
type app struct {
	cfg     *model.Config
	layout  workspace.Layout
	schools []model.School
	dims    []model.Dimension
}

// loadConfig layers viper's merged settings (file, SCHOOLSCOPE_* env,
// bound flags) over the defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// loadApp loads the configuration, the school list and the dimension
// catalog. Relative catalog and cache paths resolve against the workspace
// root.
func loadApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	layout := workspace.NewLayout(cfg.Workspace)
	cfg.Cache.Dir = resolvePath(layout.Root, cfg.Cache.Dir)

	schools, err := catalog.LoadSchools(resolvePath(layout.Root, cfg.Catalog.SchoolsFile))
	if err != nil {
		return nil, err
	}

	dimsFile := ""
	if cfg.Catalog.DimensionsFile != "" {
		dimsFile = resolvePath(layout.Root, cfg.Catalog.DimensionsFile)
	}
	dims, err := catalog.LoadDimensions(dimsFile)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, layout: layout, schools: schools, dims: dims}, nil
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// selectSchools resolves --school values, or returns every school with --all.
// Values naming the same school collapse to its first occurrence.
func (a *app) selectSchools(identifiers []string, all bool) ([]model.School, error) {
	if all {
		return a.schools, nil
	}
	if len(identifiers) == 0 {
		return nil, errors.New("provide --school or use --all")
	}

	selected := make([]model.School, 0, len(identifiers))
	seen := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		s, err := catalog.ResolveSchool(a.schools, id)
		if err != nil {
			return nil, err
		}
		if seen[s.Slug] {
			continue
		}
		seen[s.Slug] = true
		selected = append(selected, s)
	}
	return selected, nil
}

// applyAPIKeys fills provider credentials from the environment.
func applyAPIKeys(cfg *model.LLMConfig) error {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.BaseURL = baseURL
		}
	}
	return nil
}

// newProvider builds the configured LLM provider. Commands that need a model
// fail here when none is configured.
func (a *app) newProvider() (llm.Provider, error) {
	if err := applyAPIKeys(&a.cfg.LLM); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM, a.cfg.HTTP))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errors.New("no LLM provider configured (set llm.provider)")
	}
	return provider, nil
}

// newResearcher wires search, fetching, robots.txt, rate limiting and the
// page cache into a DeepResearcher.
func (a *app) newResearcher(provider llm.Provider) *research.DeepResearcher {
	cfg := a.cfg
	c := cache.New(cfg.Cache)
	client := util.NewHTTPClient(cfg.HTTP, 3)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var robots *util.RobotsChecker
	if cfg.Research.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, client)
	}

	fetcher := research.NewFetcher(cfg.HTTP, cfg.Research.PageChars, research.FetcherDeps{
		Robots:  robots,
		Limiter: limiter,
		Cache:   c,
		Logger:  logger,
	})
	searcher := research.NewDuckDuckGo(cfg.Research.SearchURL, client, cfg.HTTP.UserAgent, limiter, c)

	return research.NewDeepResearcher(provider, searcher, fetcher, cfg.Research, logger)
}

// printOutcomes writes a stage summary to stderr and lists failed units.
func printOutcomes(stage string, outcomes []model.Outcome) {
	failed := model.CountFailures(outcomes)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s complete\n", stage)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(outcomes)-failed)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)

	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(os.Stderr, "  ✗ %s/%s: %v\n", o.School, o.Unit, o.Err)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")
}

// allFailed reports whether there was work and none of it succeeded.
func allFailed(outcomes []model.Outcome) bool {
	return len(outcomes) > 0 && model.CountFailures(outcomes) == len(outcomes)
}
