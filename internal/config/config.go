package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"
	"github.com/spf13/viper"

	runnercfg "github.com/shouni/go-seo-writer/pkg/config"
)

// デフォルト値の定義なのだ
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultProvider    = ProviderGemini
	DefaultServerAddr  = ":8080"
	DefaultSessionTTL  = 2 * time.Hour
	DefaultOutputDir   = "output"
	DefaultOpenAIModel = "gpt-4o"
	DefaultOpenAIImage = "dall-e-3"
)

// Config はアプリケーション全体の環境設定（APIキーやサーバー設定）を保持する構造体なのだ。
type Config struct {
	Provider string

	// Gemini (Gemini API / Vertex AI)
	ProjectID    string
	LocationID   string
	GeminiAPIKey string

	// OpenAI 互換
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Runner の設定
	Runner runnercfg.Config

	// HTTP サーバー
	ServerAddr string
	SessionTTL time.Duration

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	Keyword       string // --keyword
	Language      string // --language
	WordCount     int    // --word-count
	ArticleStyle  string // --style
	CustomContext string // --context
	OutputDir     string // --output-dir
	WithImages    bool   // --images
	WriteHTML     bool   // --html
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	rc := runnercfg.DefaultConfig()
	rc.AnalysisModel = envutil.GetEnv("ANALYSIS_MODEL", rc.AnalysisModel)
	rc.ArticleModel = envutil.GetEnv("ARTICLE_MODEL", rc.ArticleModel)
	rc.ImagePromptModel = envutil.GetEnv("IMAGE_PROMPT_MODEL", rc.ImagePromptModel)
	rc.ImageModel = envutil.GetEnv("IMAGE_MODEL", rc.ImageModel)
	rc.AspectRatio = envutil.GetEnv("IMAGE_ASPECT_RATIO", rc.AspectRatio)
	rc.RateInterval = envDuration("IMAGE_RATE_INTERVAL", rc.RateInterval)
	rc.RequestTimeout = envDuration("REQUEST_TIMEOUT", rc.RequestTimeout)
	rc.HTTPTimeout = envDuration("HTTP_TIMEOUT", rc.HTTPTimeout)
	rc.FetchReferences = envBool("FETCH_REFERENCES", rc.FetchReferences)
	rc.ReferenceMaxChars = envInt("REFERENCE_MAX_CHARS", rc.ReferenceMaxChars)

	return &Config{
		Provider:      envutil.GetEnv("SEO_PROVIDER", DefaultProvider),
		ProjectID:     envutil.GetEnv("PROJECT_ID", ""),
		LocationID:    envutil.GetEnv("REGION", runnercfg.DefaultLocationID),
		GeminiAPIKey:  envutil.GetEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  envutil.GetEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envutil.GetEnv("OPENAI_BASE_URL", ""),
		Runner:        rc,
		ServerAddr:    envutil.GetEnv("SERVER_ADDR", DefaultServerAddr),
		SessionTTL:    envDuration("SESSION_TTL", DefaultSessionTTL),
		Options: GenerateOptions{
			OutputDir: DefaultOutputDir,
		},
	}
}

// Load は環境変数を読み込んだ上で、path が指定されていれば YAML の設定ファイルで上書きするのだ。
func Load(path string) (*Config, error) {
	cfg := LoadConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	cfg.ApplyFile(v)
	return cfg, nil
}

// ApplyFile は設定ファイルに書かれているキーだけを反映するのだ。
func (c *Config) ApplyFile(v *viper.Viper) {
	setString(v, "provider", &c.Provider)
	setString(v, "project_id", &c.ProjectID)
	setString(v, "location_id", &c.LocationID)
	setString(v, "openai.base_url", &c.OpenAIBaseURL)

	setString(v, "models.analysis", &c.Runner.AnalysisModel)
	setString(v, "models.article", &c.Runner.ArticleModel)
	setString(v, "models.image_prompt", &c.Runner.ImagePromptModel)
	setString(v, "models.image", &c.Runner.ImageModel)

	setString(v, "images.aspect_ratio", &c.Runner.AspectRatio)
	setDuration(v, "images.rate_interval", &c.Runner.RateInterval)
	setDuration(v, "request_timeout", &c.Runner.RequestTimeout)

	setBool(v, "references.fetch", &c.Runner.FetchReferences)
	setInt(v, "references.max_chars", &c.Runner.ReferenceMaxChars)
	setInt(v, "references.max_fetches", &c.Runner.MaxReferenceFetches)
	setDuration(v, "references.http_timeout", &c.Runner.HTTPTimeout)

	setString(v, "server.addr", &c.ServerAddr)
	setDuration(v, "server.session_ttl", &c.SessionTTL)
	setString(v, "output_dir", &c.Options.OutputDir)
}

// Validate はプロバイダと API キーの組み合わせを検証するのだ。
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" && c.ProjectID == "" {
			return fmt.Errorf("GEMINI_API_KEY または PROJECT_ID 環境変数が設定されていません")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY 環境変数が設定されていません")
		}
	default:
		return fmt.Errorf("サポートされていないプロバイダ: '%s'。サポートされているプロバイダは [%s, %s] です",
			c.Provider, ProviderGemini, ProviderOpenAI)
	}
	return nil
}

// UseOpenAIDefaults は OpenAI 使用時にモデル名が Gemini の既定値のままなら置き換えるのだ。
func (c *Config) UseOpenAIDefaults() {
	if c.Provider != ProviderOpenAI {
		return
	}
	replace := func(dst *string, geminiDefault, openaiDefault string) {
		if *dst == geminiDefault {
			*dst = openaiDefault
		}
	}
	replace(&c.Runner.AnalysisModel, runnercfg.DefaultAnalysisModel, DefaultOpenAIModel)
	replace(&c.Runner.ArticleModel, runnercfg.DefaultArticleModel, DefaultOpenAIModel)
	replace(&c.Runner.ImagePromptModel, runnercfg.DefaultImagePromptModel, DefaultOpenAIModel)
	replace(&c.Runner.ImageModel, runnercfg.DefaultImageModel, DefaultOpenAIImage)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の値が不正なため既定値を使うのだ", "key", key, "value", raw, "error", err)
		return def
	}
	return d
}

func envInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数の値が不正なため既定値を使うのだ", "key", key, "value", raw, "error", err)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("環境変数の値が不正なため既定値を使うのだ", "key", key, "value", raw, "error", err)
		return def
	}
	return b
}
