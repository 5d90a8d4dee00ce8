package prompts

import (
	_ "embed"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

const (
	ModeAnalysis     = "analysis"
	ModeArticle      = "article"
	ModeImagePrompts = "image_prompts"
)

const (
	// AnalysisSystemInstruction はキーワード分析用のシステム指示です。
	AnalysisSystemInstruction = "You are an expert SEO Strategist. Analyze search results and return pure JSON."
	// ArticleSystemInstruction は記事執筆用のシステム指示です。
	ArticleSystemInstruction = "You are a professional senior copywriter and SEO expert."
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// モードごとに使うフィールドは異なります。
type TemplateData struct {
	Form     domain.FormData
	Analysis domain.AnalysisData
	// References は参考 URL から取得した本文の抜粋です（記事モードのみ）。
	References []domain.ReferenceExcerpt
	// OutlineExcerpt は画像プロンプト生成用に切り詰めたアウトラインです。
	OutlineExcerpt string
}

var (
	//go:embed analysis.md
	AnalysisPrompt string
	//go:embed article.md
	ArticlePrompt string
	//go:embed image_prompts.md
	ImagePromptsPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModeAnalysis:     AnalysisPrompt,
	ModeArticle:      ArticlePrompt,
	ModeImagePrompts: ImagePromptsPrompt,
}
