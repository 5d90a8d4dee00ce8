package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	runnercfg "github.com/shouni/go-seo-writer/pkg/config"
)

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SEO_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ARTICLE_MODEL", "custom-writer")
	t.Setenv("IMAGE_RATE_INTERVAL", "5s")
	t.Setenv("FETCH_REFERENCES", "true")
	t.Setenv("REFERENCE_MAX_CHARS", "not-a-number")
	t.Setenv("SESSION_TTL", "30m")

	cfg := LoadConfig()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "custom-writer", cfg.Runner.ArticleModel)
	assert.Equal(t, 5*time.Second, cfg.Runner.RateInterval)
	assert.True(t, cfg.Runner.FetchReferences)
	assert.Equal(t, runnercfg.DefaultReferenceMaxChars, cfg.Runner.ReferenceMaxChars)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())

	cfg.UseOpenAIDefaults()
	assert.Equal(t, DefaultOpenAIModel, cfg.Runner.AnalysisModel)
	assert.Equal(t, "custom-writer", cfg.Runner.ArticleModel)
	assert.Equal(t, DefaultOpenAIImage, cfg.Runner.ImageModel)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SERVER_ADDR", ":9000")

	path := filepath.Join(t.TempDir(), "seo-writer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  article: gemini-2.5-pro
images:
  aspect_ratio: "4:3"
  rate_interval: 500ms
references:
  fetch: true
  max_fetches: 5
  http_timeout: 45s
server:
  session_ttl: 10m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Runner.ArticleModel)
	assert.Equal(t, runnercfg.DefaultAnalysisModel, cfg.Runner.AnalysisModel)
	assert.Equal(t, "4:3", cfg.Runner.AspectRatio)
	assert.Equal(t, 500*time.Millisecond, cfg.Runner.RateInterval)
	assert.True(t, cfg.Runner.FetchReferences)
	assert.Equal(t, 5, cfg.Runner.MaxReferenceFetches)
	assert.Equal(t, 45*time.Second, cfg.Runner.HTTPTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.NoError(t, cfg.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini}
	assert.Error(t, cfg.Validate())
	cfg.ProjectID = "my-project"
	assert.NoError(t, cfg.Validate())

	cfg = &Config{Provider: ProviderOpenAI}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Provider: "anthropic"}
	assert.Error(t, cfg.Validate())
}
