package runner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/parser"
	"github.com/shouni/go-seo-writer/pkg/prompts"
	"github.com/shouni/go-seo-writer/pkg/publisher"
)

// ImageRunner は記事の挿絵を最大 domain.MaxImagesPerArticle 枚生成します。
type ImageRunner struct {
	cfg           config.Config
	promptBuilder prompts.PromptBuilder
	aiClient      adapters.GenerativeModel
}

// NewImageRunner は依存関係を注入して初期化します。
func NewImageRunner(cfg config.Config, pb prompts.PromptBuilder, ai adapters.GenerativeModel) *ImageRunner {
	return &ImageRunner{
		cfg:           cfg,
		promptBuilder: pb,
		aiClient:      ai,
	}
}

// Run は2段階で挿絵を生成します。
// まずアウトラインから画像プロンプトを作り（解析失敗時は定型プロンプト）、
// 次に各プロンプトの画像を並列で生成します。個々の画像の失敗は結果から除くだけで、
// エラーになるのはプロンプト生成の通信自体が失敗した場合のみです。
// RateInterval が正の場合、その回の画像リクエストだけをバースト2で間隔を空けて送信します。
// 間隔は Run ごとに独立しており、別のセッションの生成を待たせることはありません。
func (r *ImageRunner) Run(ctx context.Context, keyword, outline string) ([]domain.GeneratedImage, error) {
	imagePrompts, err := r.buildImagePrompts(ctx, keyword, outline)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Starting parallel image generation", "keyword", keyword, "count", len(imagePrompts))

	limiter := r.newLimiter()
	results := make([]*domain.GeneratedImage, len(imagePrompts))
	var eg errgroup.Group
	for i, prompt := range imagePrompts {
		eg.Go(func() error {
			results[i] = r.generateOne(ctx, limiter, i, prompt)
			return nil
		})
	}
	_ = eg.Wait()

	images := make([]domain.GeneratedImage, 0, len(results))
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}

	slog.InfoContext(ctx, "Image generation finished", "requested", len(imagePrompts), "succeeded", len(images))
	return images, nil
}

func (r *ImageRunner) buildImagePrompts(ctx context.Context, keyword, outline string) ([]string, error) {
	logger := slog.With("keyword", keyword, "model", r.cfg.ImagePromptModel)

	prompt, err := r.promptBuilder.Build(prompts.ModeImagePrompts, prompts.TemplateData{
		Form:           domain.FormData{Keyword: keyword},
		OutlineExcerpt: parser.TruncateRunes(outline, r.cfg.OutlineExcerptLen),
	})
	if err != nil {
		logger.WarnContext(ctx, "Image prompt template failed, using fallback prompts", "error", err)
		return parser.FallbackImagePrompts(keyword), nil
	}

	callCtx, cancel := withTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	resp, err := r.aiClient.GenerateText(callCtx, adapters.TextRequest{
		Model:  r.cfg.ImagePromptModel,
		Prompt: prompt,
		Format: adapters.FormatStringArray,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Image prompt request failed", "error", err)
		return nil, ErrImagesFailed
	}

	imagePrompts, err := parser.ParseImagePrompts(resp.Text, domain.MaxImagesPerArticle)
	if err != nil {
		logger.WarnContext(ctx, "Image prompts could not be parsed, using fallback prompts", "error", err)
		return parser.FallbackImagePrompts(keyword), nil
	}
	return imagePrompts, nil
}

func (r *ImageRunner) newLimiter() *rate.Limiter {
	if r.cfg.RateInterval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(r.cfg.RateInterval), domain.MaxImagesPerArticle)
}

// generateOne は1枚の画像を生成します。失敗した場合はログを出して nil を返します。
func (r *ImageRunner) generateOne(ctx context.Context, limiter *rate.Limiter, index int, prompt string) *domain.GeneratedImage {
	logger := slog.With("image_index", index+1, "model", r.cfg.ImageModel)

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			logger.WarnContext(ctx, "Rate limiter wait aborted", "error", err)
			return nil
		}
	}

	callCtx, cancel := withTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := r.aiClient.GenerateImage(callCtx, adapters.ImageRequest{
		Model:       r.cfg.ImageModel,
		Prompt:      prompt,
		AspectRatio: r.cfg.AspectRatio,
	})
	if err != nil {
		logger.WarnContext(ctx, "Image generation failed, dropping", "error", err)
		return nil
	}

	logger.InfoContext(ctx, "Image generation completed",
		"mime_type", resp.MimeType,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return &domain.GeneratedImage{
		URL:    publisher.EncodeDataURI(resp.MimeType, resp.Data),
		Prompt: prompt,
	}
}
