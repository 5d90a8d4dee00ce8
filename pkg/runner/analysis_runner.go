package runner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/parser"
	"github.com/shouni/go-seo-writer/pkg/prompts"
)

// AnalysisRunner は検索グラウンディング付きでキーワードを分析します。
type AnalysisRunner struct {
	cfg           config.Config
	promptBuilder prompts.PromptBuilder
	aiClient      adapters.TextGenerator
}

// NewAnalysisRunner は依存関係を注入して初期化します。
func NewAnalysisRunner(cfg config.Config, pb prompts.PromptBuilder, ai adapters.TextGenerator) *AnalysisRunner {
	return &AnalysisRunner{
		cfg:           cfg,
		promptBuilder: pb,
		aiClient:      ai,
	}
}

// Run はフォームの内容から分析結果を生成します。
// 通信の失敗は ErrAnalyzeFailed、応答の形式不備は ErrParseAnalysis を返します。
func (r *AnalysisRunner) Run(ctx context.Context, form domain.FormData) (domain.AnalysisData, error) {
	logger := slog.With("keyword", form.Keyword, "model", r.cfg.AnalysisModel)

	prompt, err := r.promptBuilder.Build(prompts.ModeAnalysis, prompts.TemplateData{Form: form})
	if err != nil {
		logger.ErrorContext(ctx, "Analysis prompt build failed", "error", err)
		return domain.AnalysisData{}, ErrAnalyzeFailed
	}

	callCtx, cancel := withTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	logger.InfoContext(ctx, "AnalysisRunner: Calling model with web search")
	start := time.Now()
	resp, err := r.aiClient.GenerateText(callCtx, adapters.TextRequest{
		Model:             r.cfg.AnalysisModel,
		Prompt:            prompt,
		SystemInstruction: prompts.AnalysisSystemInstruction,
		WebSearch:         true,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Analysis request failed", "error", err)
		return domain.AnalysisData{}, ErrAnalyzeFailed
	}

	if strings.TrimSpace(resp.Text) == "" {
		logger.ErrorContext(ctx, "Analysis returned no data")
		return domain.AnalysisData{}, ErrParseAnalysis
	}

	analysis, err := parser.ParseAnalysis(resp.Text)
	if err != nil {
		logger.ErrorContext(ctx, "Analysis response could not be parsed",
			"error", err,
			"excerpt", parser.TruncateRunes(resp.Text, 200),
		)
		return domain.AnalysisData{}, ErrParseAnalysis
	}
	analysis.GroundingSources = parser.DedupeSources(resp.Sources, parser.MaxGroundingSources)

	logger.InfoContext(ctx, "Analysis completed",
		"difficulty", analysis.Difficulty,
		"keywords", len(analysis.RelatedKeywords),
		"sources", len(analysis.GroundingSources),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return analysis, nil
}
