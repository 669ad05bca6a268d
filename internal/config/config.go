package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		AI     AIConfig     `yaml:"ai"`
		Git    GitConfig    `yaml:"git"`
		GitHub GitHubConfig `yaml:"github"`
		CLI    CLIConfig    `yaml:"cli"`

		// PathFile is the file the configuration was read from; empty when
		// only defaults and environment were used.
		PathFile string `yaml:"-"`

		// Secrets are read from the environment and never written back.
		AnthropicAPIKey string `yaml:"-"`
		GeminiAPIKey    string `yaml:"-"`
		GitHubToken     string `yaml:"-"`
	}

	AIConfig struct {
		Provider       AI    `yaml:"provider"`
		Model          Model `yaml:"model"`
		MaxDiffSize    int   `yaml:"max_diff_size"`
		MaxPRDiffSize  int   `yaml:"max_pr_diff_size"`
		MaxRetries     int   `yaml:"max_retries"`
		TimeoutSeconds int   `yaml:"timeout_seconds"`
	}

	GitConfig struct {
		DefaultBranch string `yaml:"default_branch"`
		AutoStage     bool   `yaml:"auto_stage"`
	}

	GitHubConfig struct {
		DefaultPrivate bool `yaml:"default_private"`
		AutoInit       bool `yaml:"auto_init"`
		PaginateFiles  bool `yaml:"paginate_files"`
		PerPage        int  `yaml:"per_page"`
	}

	CLIConfig struct {
		Debug    bool   `yaml:"debug"`
		Language string `yaml:"language"`
	}
)

const (
	defaultMaxDiffSize    = 50000
	defaultMaxPRDiffSize  = 100000
	defaultTimeoutSeconds = 120
	defaultBranch         = "main"
	defaultPerPage        = 100
	maxPerPage            = 100

	configDirName  = "gh-assistant"
	configFileName = "config.yml"
)

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:       AIAnthropic,
			Model:          DefaultModelForAI(AIAnthropic),
			MaxDiffSize:    defaultMaxDiffSize,
			MaxPRDiffSize:  defaultMaxPRDiffSize,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Git: GitConfig{
			DefaultBranch: defaultBranch,
		},
		GitHub: GitHubConfig{
			AutoInit:      true,
			PaginateFiles: true,
			PerPage:       defaultPerPage,
		},
		CLI: CLIConfig{
			Language: LangEN,
		},
	}
}

// SearchPaths lists the candidate files in priority order: project-local
// files first, then the user's config directory, then the home directory.
func SearchPaths() []string {
	paths := []string{
		".gh-assistant.yml",
		".gh-assistant.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", configDirName, configFileName),
			filepath.Join(home, ".gh-assistant.yml"),
		)
	}
	return paths
}

// UserConfigPath is where `config init` writes a new file.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", fmt.Errorf("could not determine the home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName, configFileName), nil
}

// LoadConfig merges the first existing file of paths onto the defaults,
// applies environment overrides and validates the result. No paths means
// SearchPaths().
func LoadConfig(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = SearchPaths()
	}

	cfg := Default()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}

		// Decoding onto the defaults keeps every key the file does not set.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
		}
		cfg.PathFile = path
		if cfg.AI.Provider != AIAnthropic && cfg.AI.Model == DefaultModelForAI(AIAnthropic) {
			cfg.AI.Model = DefaultModelForAI(cfg.AI.Provider)
		}
		break
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	providerChanged := false
	if v := getenv("GH_ASSIST_PROVIDER"); v != "" {
		providerChanged = AI(strings.ToLower(v)) != c.AI.Provider
		c.AI.Provider = AI(strings.ToLower(v))
	}

	switch {
	case getenv("GH_ASSIST_MODEL") != "":
		c.AI.Model = Model(getenv("GH_ASSIST_MODEL"))
	case c.AI.Provider == AIAnthropic && getenv("ANTHROPIC_MODEL") != "":
		c.AI.Model = Model(getenv("ANTHROPIC_MODEL"))
	case providerChanged:
		c.AI.Model = DefaultModelForAI(c.AI.Provider)
	}

	if v := getenv("GH_ASSIST_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CLI.Debug = b
		}
	}
	if v := getenv("GH_ASSIST_DEFAULT_BRANCH"); v != "" {
		c.Git.DefaultBranch = v
	}
	if v := getenv("GH_ASSIST_LANG"); v != "" {
		c.CLI.Language = v
	}

	c.AnthropicAPIKey = getenv("ANTHROPIC_API_KEY")
	c.GeminiAPIKey = firstNonEmpty(getenv("GEMINI_API_KEY"), getenv("GOOGLE_API_KEY"))
	c.GitHubToken = firstNonEmpty(getenv("GITHUB_TOKEN"), getenv("GH_TOKEN"))
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	if !IsSupportedAI(c.AI.Provider) {
		return fmt.Errorf("unsupported ai.provider %q", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return errors.New("ai.model cannot be empty")
	}
	if c.AI.MaxDiffSize <= 0 {
		return errors.New("ai.max_diff_size must be greater than 0")
	}
	if c.AI.MaxPRDiffSize <= 0 {
		return errors.New("ai.max_pr_diff_size must be greater than 0")
	}
	if c.AI.MaxRetries < 0 {
		return errors.New("ai.max_retries cannot be negative")
	}
	if c.AI.TimeoutSeconds <= 0 {
		return errors.New("ai.timeout_seconds must be greater than 0")
	}
	if c.GitHub.PerPage <= 0 || c.GitHub.PerPage > maxPerPage {
		return fmt.Errorf("github.per_page must be between 1 and %d", maxPerPage)
	}
	if c.Git.DefaultBranch == "" {
		return errors.New("git.default_branch cannot be empty")
	}
	return nil
}

// SaveConfig writes the non-secret settings as YAML.
func SaveConfig(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}

	if path == "" {
		path = cfg.PathFile
	}
	if path == "" {
		return errors.New("config file path is not defined")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	cfg.PathFile = path
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
