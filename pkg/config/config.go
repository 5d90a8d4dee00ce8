package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultLocationID          = "us-central1"
	DefaultAnalysisModel       = "gemini-2.5-flash"
	DefaultArticleModel        = "gemini-3-pro-preview"
	DefaultImagePromptModel    = "gemini-2.5-flash"
	DefaultImageModel          = "gemini-2.5-flash-image"
	DefaultAspectRatio         = "16:9"
	DefaultRateInterval        = 2 * time.Second
	DefaultRequestTimeout      = 3 * time.Minute
	DefaultHTTPTimeout         = 30 * time.Second
	DefaultOutlineExcerptLen   = 500
	DefaultReferenceMaxChars   = 4000
	DefaultMaxReferenceFetches = 3
)

// Config は seo-writer の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	AnalysisModel    string // 検索グラウンディング付きの分析用
	ArticleModel     string // 本文執筆用
	ImagePromptModel string // 挿絵プロンプト生成用
	ImageModel       string // 画像生成用

	// --- Generation Settings ---
	AspectRatio       string
	RateInterval      time.Duration
	OutlineExcerptLen int

	// --- Reference Expansion ---
	FetchReferences     bool
	ReferenceMaxChars   int
	MaxReferenceFetches int

	// --- Timeout ---
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration // 参考資料の取得に使う HTTP クライアントのタイムアウト
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		AnalysisModel:       DefaultAnalysisModel,
		ArticleModel:        DefaultArticleModel,
		ImagePromptModel:    DefaultImagePromptModel,
		ImageModel:          DefaultImageModel,
		AspectRatio:         DefaultAspectRatio,
		RateInterval:        DefaultRateInterval,
		OutlineExcerptLen:   DefaultOutlineExcerptLen,
		ReferenceMaxChars:   DefaultReferenceMaxChars,
		MaxReferenceFetches: DefaultMaxReferenceFetches,
		RequestTimeout:      DefaultRequestTimeout,
		HTTPTimeout:         DefaultHTTPTimeout,
	}
}
