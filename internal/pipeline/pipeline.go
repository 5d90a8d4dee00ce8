package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-seo-writer/internal/builder"
	"github.com/shouni/go-seo-writer/internal/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/publisher"
)

// Result は一括実行の各フェーズの成果物をまとめたものなのだ。
type Result struct {
	Form     domain.FormData
	Analysis domain.AnalysisData
	Article  string
	Images   []domain.GeneratedImage
	Publish  publisher.PublishResult
}

// BuildForm は CLI の入力から FormData を組み立て、未指定の項目はカタログの既定値で埋めるのだ。
func BuildForm(catalog *domain.Catalog, opts config.GenerateOptions) (domain.FormData, error) {
	form := catalog.DefaultForm()
	form.Keyword = strings.TrimSpace(opts.Keyword)
	form.CustomContext = opts.CustomContext
	if opts.Language != "" {
		form.Language = opts.Language
	}
	if opts.WordCount != 0 {
		form.WordCount = opts.WordCount
	}
	if opts.ArticleStyle != "" {
		form.ArticleStyle = opts.ArticleStyle
	}
	if err := form.Validate(catalog); err != nil {
		return form, fmt.Errorf("入力が正しくないのだ: %w", err)
	}
	return form, nil
}

// ExecuteAnalysis は Phase 1（キーワード分析）だけを実行するのだ。
func ExecuteAnalysis(ctx context.Context, appCtx *builder.AppContext, form domain.FormData) (domain.AnalysisData, error) {
	return runAnalysisStep(ctx, appCtx, form)
}

// Execute は分析、執筆、挿絵、保存の全フェーズを順に実行するのだ。
// 分析の提案アウトラインはそのまま執筆に使うのだ。
func Execute(ctx context.Context, appCtx *builder.AppContext, form domain.FormData) (*Result, error) {
	opts := appCtx.Options
	result := &Result{Form: form}

	// --- Phase 1: Analysis Phase (キーワード分析) ---
	analysis, err := runAnalysisStep(ctx, appCtx, form)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis

	// --- Phase 2: Article Phase (執筆) ---
	article, err := runArticleStep(ctx, appCtx, form, analysis)
	if err != nil {
		return nil, err
	}
	result.Article = article

	// --- Phase 3: Image Phase (挿絵。失敗しても記事の保存は続けるのだ) ---
	if opts.WithImages {
		result.Images = runImageStep(ctx, appCtx, form.Keyword, analysis.SuggestedOutline)
	}

	// --- Phase 4: Publish Phase (保存) ---
	pub, err := runPublishStep(ctx, appCtx, form.Keyword, article, result.Images)
	if err != nil {
		return nil, err
	}
	result.Publish = pub

	slog.InfoContext(ctx, "すべての工程が完了したのだ！",
		"title", publisher.ExtractTitle(article),
		"markdown", pub.MarkdownPath,
		"html", pub.HTMLPath,
		"images", len(pub.ImagePaths))
	return result, nil
}

func runAnalysisStep(ctx context.Context, appCtx *builder.AppContext, form domain.FormData) (domain.AnalysisData, error) {
	slog.InfoContext(ctx, "キーワード分析を開始するのだ！", "keyword", form.Keyword, "model", appCtx.Config.Runner.AnalysisModel)
	analysis, err := appCtx.Manager.Runners().Analysis.Run(ctx, form)
	if err != nil {
		return domain.AnalysisData{}, err
	}
	slog.InfoContext(ctx, "キーワード分析が完了したのだ",
		"difficulty", analysis.Difficulty,
		"related_keywords", len(analysis.RelatedKeywords),
		"sources", len(analysis.GroundingSources))
	return analysis, nil
}

func runArticleStep(ctx context.Context, appCtx *builder.AppContext, form domain.FormData, analysis domain.AnalysisData) (string, error) {
	slog.InfoContext(ctx, "記事を執筆するのだ！",
		"model", appCtx.Config.Runner.ArticleModel,
		"words", form.WordCount,
		"style", form.ArticleStyle)
	return appCtx.Manager.Runners().Article.Run(ctx, form, analysis)
}

func runImageStep(ctx context.Context, appCtx *builder.AppContext, keyword, outline string) []domain.GeneratedImage {
	slog.InfoContext(ctx, "挿絵を生成するのだ！", "model", appCtx.Config.Runner.ImageModel)
	images, err := appCtx.Manager.Runners().Image.Run(ctx, keyword, outline)
	if err != nil {
		slog.WarnContext(ctx, "挿絵の生成に失敗したのだ。記事のみ保存するのだ", "error", err)
		return nil
	}
	return images
}

func runPublishStep(ctx context.Context, appCtx *builder.AppContext, keyword, article string, images []domain.GeneratedImage) (publisher.PublishResult, error) {
	res, err := builder.BuildPublisher().Publish(ctx, keyword, article, images, publisher.Options{
		OutputDir: appCtx.Options.OutputDir,
		WriteHTML: appCtx.Options.WriteHTML,
	})
	if err != nil {
		return res, fmt.Errorf("記事の保存に失敗したのだ: %w", err)
	}
	return res, nil
}
