package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
results_dir: /data/recon
llm:
  provider: openai
  base_url: https://api.deepseek.com/v1
  model: deepseek-chat
concurrency:
  workers: 2
  rpm: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/recon", cfg.ResultsDir)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultPromptsFile, cfg.PromptsFile)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.Concurrency.Workers)
	assert.Equal(t, 30, cfg.Concurrency.RPM)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestResolveAPIKey(t *testing.T) {
	env := map[string]string{
		"GOOGLE_API_KEY": "google-key",
		"OPENAI_API_KEY": "openai-key",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		name    string
		cfg     LLMConfig
		want    string
		wantErr string
	}{
		{"config wins", LLMConfig{Provider: ProviderGemini, APIKey: "inline"}, "inline", ""},
		{"gemini env", LLMConfig{Provider: ProviderGemini}, "google-key", ""},
		{"empty provider is gemini", LLMConfig{}, "google-key", ""},
		{"openai env", LLMConfig{Provider: ProviderOpenAI}, "openai-key", ""},
		{"unknown provider", LLMConfig{Provider: "claude"}, "", "unknown llm provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ResolveAPIKey(getenv)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LLMConfig{Provider: ProviderGemini}.ResolveAPIKey(func(string) string { return "" })
	assert.ErrorContains(t, err, "GOOGLE_API_KEY not found")
}
