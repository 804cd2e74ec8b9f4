package model

import "time"

// Config is the complete runtime configuration. Defaults come from
// DefaultConfig; the CLI layers the config file, SCHOOLSCOPE_* environment
// variables and flags on top.
type Config struct {
	Workspace    WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Catalog      CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Research     ResearchConfig    `yaml:"research" mapstructure:"research"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Synthesis    SynthesisConfig   `yaml:"synthesis" mapstructure:"synthesis"`
	Grid         GridConfig        `yaml:"grid" mapstructure:"grid"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// WorkspaceConfig locates the documents. Relative paths resolve against Root.
type WorkspaceConfig struct {
	Root        string `yaml:"root" mapstructure:"root"`
	RawDir      string `yaml:"raw_dir" mapstructure:"raw_dir"`
	EvidenceDir string `yaml:"evidence_dir" mapstructure:"evidence_dir"`
	TableFile   string `yaml:"table_file" mapstructure:"table_file"`
	GridFile    string `yaml:"grid_file" mapstructure:"grid_file"`
}

// CatalogConfig points at the school and dimension lists.
// An empty DimensionsFile selects the built-in catalog.
type CatalogConfig struct {
	SchoolsFile    string `yaml:"schools_file" mapstructure:"schools_file"`
	DimensionsFile string `yaml:"dimensions_file" mapstructure:"dimensions_file"`
}

// HTTPConfig controls page fetching for research.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the fetched-page cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig bounds requests per domain.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ResearchConfig tunes the open-web research pass.
type ResearchConfig struct {
	Model         string        `yaml:"model" mapstructure:"model"`
	MaxQueries    int           `yaml:"max_queries" mapstructure:"max_queries"`
	PerQuery      int           `yaml:"per_query" mapstructure:"per_query"`
	MinSources    int           `yaml:"min_sources" mapstructure:"min_sources"`
	PageChars     int           `yaml:"page_chars" mapstructure:"page_chars"`
	ExtractChars  int           `yaml:"extract_chars" mapstructure:"extract_chars"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	SearchURL     string        `yaml:"search_url" mapstructure:"search_url"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LLMConfig selects the language model provider.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SynthesisConfig tunes the evidence build. An empty Model uses LLM.Model.
type SynthesisConfig struct {
	Model string `yaml:"model" mapstructure:"model"`
}

// GridConfig controls the summary grid links.
type GridConfig struct {
	LinkBase string `yaml:"link_base" mapstructure:"link_base"`
}

// ConcurrencyConfig sets how many schools are processed at once.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls console output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root:        ".",
			RawDir:      "raw",
			EvidenceDir: "evidence",
			TableFile:   "data/schools.csv",
			GridFile:    "docs/synthesis/scoring-grid.md",
		},
		Catalog: CatalogConfig{
			SchoolsFile: "config/schools.yml",
		},
		HTTP: HTTPConfig{
			Timeout:      12 * time.Second,
			UserAgent:    "SchoolscopeResearchBot/0.1 (+https://github.com/ppiankov/schoolscope)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".schoolscope/cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Research: ResearchConfig{
			Model:         "gpt-4.1-mini",
			MaxQueries:    10,
			PerQuery:      2,
			MinSources:    6,
			PageChars:     4000,
			ExtractChars:  1800,
			Timeout:       10 * time.Minute,
			SearchURL:     "https://html.duckduckgo.com/html/",
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   600,
			MaxTokens: 4000,
		},
		Grid: GridConfig{
			LinkBase: "/evidence",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
	}
}
