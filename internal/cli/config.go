package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

// defaultConfigPath is where collect looks for a config file when --config
// is not given. A missing file at this path is not an error.
const defaultConfigPath = "repolang.toml"

// defaultQueries is the topical sweep used when the config names none.
// Each query is run twice by the collect command: once sorted by stars,
// once in relevance order.
var defaultQueries = []string{
	"gaming",
	"machine learning",
	"biology",
	"cybersecurity",
	"web development",
	"data science",
	"mobile development",
	"devops",
	"blockchain",
	"internet of things",
	"artificial intelligence",
	"cloud computing",
	"virtual reality",
	"quantum computing",
	"computer vision",
	"robotics",
	"natural language processing",
	"big data",
	"open source",
	"privacy",
	"education",
	"healthcare",
	"finance",
	"music",
	"sports",
	"environment",
	"agriculture",
}

// Config is the collect command configuration: a TOML file provides the
// durable settings, environment variables override them. The API token is
// env-only so it never ends up in a committed config file.
type Config struct {
	GitHub  GitHubConfig  `toml:"github"`
	Collect CollectConfig `toml:"collect"`
}

// GitHubConfig configures the API client.
type GitHubConfig struct {
	Token       string `toml:"-" env:"REPOLANG_GITHUB_TOKEN"`
	BaseURL     string `toml:"base_url" env:"REPOLANG_GITHUB_BASE_URL"`
	HourlyLimit int    `toml:"hourly_limit" env:"REPOLANG_GITHUB_HOURLY_LIMIT"`
}

// CollectConfig configures the query sweep.
type CollectConfig struct {
	DataDir           string   `toml:"data_dir" env:"REPOLANG_DATA_DIR"`
	Queries           []string `toml:"queries"`
	MaxRepositories   int      `toml:"max_repositories" env:"REPOLANG_MAX_REPOSITORIES"`
	ReleaseSampleSize int      `toml:"release_sample_size" env:"REPOLANG_RELEASE_SAMPLE_SIZE"`
	Update            bool     `toml:"update" env:"REPOLANG_UPDATE"`
	ContinueOnError   bool     `toml:"continue_on_error" env:"REPOLANG_CONTINUE_ON_ERROR"`
}

// defaultConfig returns the built-in settings: the public API with the
// authenticated rate budget, the "data" folder, twelve sampled releases per
// repository, and the default query sweep.
func defaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			HourlyLimit: 5000,
		},
		Collect: CollectConfig{
			DataDir:           "data",
			Queries:           defaultQueries,
			MaxRepositories:   1000,
			ReleaseSampleSize: 12,
		},
	}
}

// loadConfig builds the effective configuration: defaults, then the TOML
// file, then environment overrides. With an empty path the default location
// is tried and silently skipped when absent; an explicit path must exist.
func loadConfig(ctx context.Context, path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if len(cfg.Collect.Queries) == 0 {
		cfg.Collect.Queries = defaultQueries
	}
	if cfg.Collect.ReleaseSampleSize < 2 {
		return nil, fmt.Errorf("release_sample_size must be at least 2, got %d", cfg.Collect.ReleaseSampleSize)
	}
	return cfg, nil
}
