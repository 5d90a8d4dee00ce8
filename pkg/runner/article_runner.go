package runner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/prompts"
)

// ArticlePlaceholder はモデルが空の本文を返した場合に使う文言です。
const ArticlePlaceholder = "Failed to generate article content."

// ReferenceExpander は補足資料中の URL を本文の抜粋に展開します。
type ReferenceExpander interface {
	Expand(ctx context.Context, text string) []domain.ReferenceExcerpt
}

// ArticleRunner は承認済みのアウトラインと分析結果から記事本文を生成します。
type ArticleRunner struct {
	cfg           config.Config
	promptBuilder prompts.PromptBuilder
	aiClient      adapters.TextGenerator
	expander      ReferenceExpander
}

// NewArticleRunner は依存関係を注入して初期化します。expander は nil でも構いません。
func NewArticleRunner(
	cfg config.Config,
	pb prompts.PromptBuilder,
	ai adapters.TextGenerator,
	expander ReferenceExpander,
) *ArticleRunner {
	return &ArticleRunner{
		cfg:           cfg,
		promptBuilder: pb,
		aiClient:      ai,
		expander:      expander,
	}
}

// Run は Markdown の記事本文を返します。失敗時は ErrArticleFailed を返します。
func (r *ArticleRunner) Run(ctx context.Context, form domain.FormData, analysis domain.AnalysisData) (string, error) {
	logger := slog.With("keyword", form.Keyword, "model", r.cfg.ArticleModel)

	data := prompts.TemplateData{Form: form, Analysis: analysis}
	if r.cfg.FetchReferences && r.expander != nil && form.CustomContext != "" {
		data.References = r.expander.Expand(ctx, form.CustomContext)
		logger.DebugContext(ctx, "Reference excerpts attached", "count", len(data.References))
	}

	prompt, err := r.promptBuilder.Build(prompts.ModeArticle, data)
	if err != nil {
		logger.ErrorContext(ctx, "Article prompt build failed", "error", err)
		return "", ErrArticleFailed
	}

	callCtx, cancel := withTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	logger.InfoContext(ctx, "ArticleRunner: Calling model", "word_count", form.WordCount)
	start := time.Now()
	resp, err := r.aiClient.GenerateText(callCtx, adapters.TextRequest{
		Model:             r.cfg.ArticleModel,
		Prompt:            prompt,
		SystemInstruction: prompts.ArticleSystemInstruction,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Article request failed", "error", err)
		return "", ErrArticleFailed
	}

	if strings.TrimSpace(resp.Text) == "" {
		logger.WarnContext(ctx, "Article response was empty, using placeholder")
		return ArticlePlaceholder, nil
	}

	logger.InfoContext(ctx, "Article completed",
		"chars", len([]rune(resp.Text)),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return resp.Text, nil
}
