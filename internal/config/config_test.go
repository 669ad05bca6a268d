package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GH_ASSIST_PROVIDER", "GH_ASSIST_MODEL", "ANTHROPIC_MODEL", "GH_ASSIST_DEBUG",
		"GH_ASSIST_DEFAULT_BRANCH", "GH_ASSIST_LANG", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"GOOGLE_API_KEY", "GITHUB_TOKEN", "GH_TOKEN",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("should return defaults when no file exists", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()

		cfg, err := LoadConfig(filepath.Join(dir, "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, AIAnthropic, cfg.AI.Provider)
		assert.Equal(t, ModelClaudeSonnet35, cfg.AI.Model)
		assert.Equal(t, 50000, cfg.AI.MaxDiffSize)
		assert.Equal(t, 100000, cfg.AI.MaxPRDiffSize)
		assert.Equal(t, 0, cfg.AI.MaxRetries)
		assert.Equal(t, "main", cfg.Git.DefaultBranch)
		assert.True(t, cfg.GitHub.PaginateFiles)
		assert.True(t, cfg.GitHub.AutoInit)
		assert.Empty(t, cfg.PathFile)
	})

	t.Run("should merge file values onto defaults", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "cfg.yml", "ai:\n  max_diff_size: 1000\ngit:\n  auto_stage: true\n")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.AI.MaxDiffSize)
		assert.Equal(t, 100000, cfg.AI.MaxPRDiffSize, "unset keys keep their defaults")
		assert.True(t, cfg.Git.AutoStage)
		assert.Equal(t, "main", cfg.Git.DefaultBranch)
		assert.Equal(t, path, cfg.PathFile)
	})

	t.Run("should use the first existing file only", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		first := writeFile(t, dir, "first.yml", "git:\n  default_branch: trunk\n")
		second := writeFile(t, dir, "second.yml", "git:\n  default_branch: develop\n")

		cfg, err := LoadConfig(filepath.Join(dir, "nope.yml"), first, second)

		require.NoError(t, err)
		assert.Equal(t, "trunk", cfg.Git.DefaultBranch)
	})

	t.Run("should pick the provider default model when only the provider is set", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "cfg.yml", "ai:\n  provider: gemini\n")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, ModelGeminiV25Flash, cfg.AI.Model)
	})

	t.Run("should apply environment overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022")
		t.Setenv("GH_ASSIST_DEBUG", "true")
		t.Setenv("GH_ASSIST_DEFAULT_BRANCH", "develop")
		t.Setenv("ANTHROPIC_API_KEY", "sk-test")
		t.Setenv("GH_TOKEN", "ghp-test")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, ModelClaudeHaiku35, cfg.AI.Model)
		assert.True(t, cfg.CLI.Debug)
		assert.Equal(t, "develop", cfg.Git.DefaultBranch)
		assert.Equal(t, "sk-test", cfg.AnthropicAPIKey)
		assert.Equal(t, "ghp-test", cfg.GitHubToken)
	})

	t.Run("should switch to the provider default model when the provider comes from env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GH_ASSIST_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, AIGemini, cfg.AI.Provider)
		assert.Equal(t, ModelGeminiV25Flash, cfg.AI.Model)
		assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "cfg.yml", "ai:\n  max_pr_diff_size: -1\n")

		_, err := LoadConfig(path)

		assert.ErrorContains(t, err, "max_pr_diff_size")
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "cfg.yml", "ai: [unclosed\n")

		_, err := LoadConfig(path)

		assert.ErrorContains(t, err, "error decoding config file")
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("should round trip without secrets", func(t *testing.T) {
		clearEnv(t)
		cfg := Default()
		cfg.AI.MaxRetries = 2
		cfg.AnthropicAPIKey = "sk-secret"
		path := filepath.Join(t.TempDir(), "nested", "config.yml")

		require.NoError(t, SaveConfig(cfg, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "sk-secret")

		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.AI.MaxRetries)
		assert.Equal(t, cfg.AI.Model, loaded.AI.Model)
	})

	t.Run("should fail without a path", func(t *testing.T) {
		err := SaveConfig(Default(), "")
		assert.ErrorContains(t, err, "path is not defined")
	})
}

func TestGetLocaleConfig(t *testing.T) {
	lang, ok := GetLocaleConfig("es")
	assert.Equal(t, LangES, lang)
	assert.True(t, ok)

	lang, ok = GetLocaleConfig("fr")
	assert.Equal(t, LangEN, lang)
	assert.False(t, ok)
}
