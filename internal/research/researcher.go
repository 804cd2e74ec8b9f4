// Package research gathers open-web sources for a school and dimension and
// asks a language model to turn them into raw fact records.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/schoolscope/internal/llm"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/prompts"
	"go.uber.org/zap"
)

// ErrNoProvider is returned by Research when no LLM provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// PageFetcher returns the readable text of a page.
type PageFetcher interface {
	PageText(ctx context.Context, rawURL string) (string, error)
}

// DeepResearcher searches, fetches and cites sources before asking the
// provider for fact records. When nothing can be gathered it falls back to
// the bare instruction.
type DeepResearcher struct {
	provider llm.Provider
	searcher Searcher
	fetcher  PageFetcher
	cfg      model.ResearchConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeepResearcher wires a researcher. fetcher may be nil, in which case
// search snippets stand in for page text.
func NewDeepResearcher(provider llm.Provider, searcher Searcher, fetcher PageFetcher, cfg model.ResearchConfig, logger *zap.Logger) *DeepResearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeepResearcher{
		provider: provider,
		searcher: searcher,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Gather runs each query and collects up to limit distinct sources, at most
// perQuery per query. Search and fetch failures are logged and skipped. A
// page without text keeps its snippet as content; a hit with neither is
// dropped.
func (r *DeepResearcher) Gather(ctx context.Context, queries []string, perQuery, limit int) []Source {
	var sources []Source
	seen := make(map[string]bool)
	today := r.now().UTC().Format("2006-01-02")

	for _, query := range queries {
		if len(sources) >= limit || ctx.Err() != nil {
			break
		}

		results, err := r.searcher.Search(ctx, query, perQuery)
		if err != nil {
			r.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
			continue
		}

		for _, hit := range results {
			if len(sources) >= limit {
				break
			}
			if hit.URL == "" || seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true

			content := ""
			if r.fetcher != nil {
				text, err := r.fetcher.PageText(ctx, hit.URL)
				if err != nil {
					r.logger.Debug("Fetch skipped", zap.String("url", hit.URL), zap.Error(err))
				}
				content = strings.TrimSpace(text)
			}
			if content == "" {
				content = strings.TrimSpace(hit.Snippet)
			}
			if content == "" {
				continue
			}

			sources = append(sources, Source{
				Title:       hit.Title,
				URL:         hit.URL,
				Snippet:     hit.Snippet,
				Content:     content,
				Query:       query,
				Reliability: ClassifyReliability(hit.URL),
				RetrievedAt: today,
			})
		}
	}
	return sources
}

// Research implements ledger.Researcher.
func (r *DeepResearcher) Research(ctx context.Context, req model.ResearchRequest) (string, error) {
	if r.provider == nil {
		return "", ErrNoProvider
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	school := req.School
	if school == "" {
		school = req.Topic
	}
	dimension := strings.ToLower(strings.TrimSpace(req.Dimension))
	if dimension == "" {
		dimension = "overview"
	}

	queries := BuildQueries(school, dimension, req.Focus, r.cfg.MaxQueries)
	if len(queries) == 0 {
		queries = []string{school + " " + dimension + " facts"}
	}

	limit := r.cfg.MaxQueries
	if r.cfg.MinSources > limit {
		limit = r.cfg.MinSources
	}
	perQuery := r.cfg.PerQuery
	if perQuery <= 0 {
		perQuery = 2
	}

	var sources []Source
	if r.searcher != nil {
		sources = r.Gather(ctx, queries, perQuery, limit)
	}

	r.logger.Info("Research run",
		zap.String("school", school),
		zap.String("dimension", dimension),
		zap.Int("queries", len(queries)),
		zap.Int("sources", len(sources)))

	completion := llm.CompletionRequest{
		System: prompts.ResearchSystem,
		Prompt: prompts.WithSources(req.Instruction, FormatSources(sources, r.cfg.ExtractChars)),
		Model:  r.cfg.Model,
	}
	if len(sources) == 0 {
		r.logger.Warn("No sources gathered; using instruction only",
			zap.String("school", school),
			zap.String("dimension", dimension))
		completion.System = prompts.InstructionOnlySystem
		completion.Prompt = req.Instruction
	}

	resp, err := r.provider.Complete(ctx, completion)
	if err != nil {
		return "", fmt.Errorf("research completion: %w", err)
	}

	if len(sources) > 0 {
		if leaked := llm.LeakedURLs(resp.Text, URLs(sources)); len(leaked) > 0 {
			r.logger.Warn("Response cites URLs outside the gathered sources",
				zap.String("school", school),
				zap.String("dimension", dimension),
				zap.Strings("urls", leaked))
		}
	}
	return resp.Text, nil
}
