package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
	"google.golang.org/genai"

	"github.com/shouni/go-seo-writer/internal/config"
	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/publisher"
	"github.com/shouni/go-seo-writer/pkg/reference"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

const defaultGeminiTemperature = float32(0.7)

// BuildAppContext は設定から AI クライアントと Manager を組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	catalog, err := domain.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("選択肢カタログの読み込みに失敗しました: %w", err)
	}

	aiClient, err := InitializeAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := httpkit.New(cfg.Runner.HTTPTimeout)

	manager, err := BuildManager(cfg, httpClient, catalog, aiClient)
	if err != nil {
		return nil, err
	}

	appCtx := NewAppContext(cfg, httpClient, catalog, aiClient, manager)
	return &appCtx, nil
}

// BuildManager は Runner 群を束ねた Manager を構築します。
func BuildManager(cfg *config.Config, httpClient httpkit.ClientInterface, catalog *domain.Catalog, aiClient adapters.GenerativeModel) (*workflow.Manager, error) {
	args := workflow.ManagerArgs{
		Config:   cfg.Runner,
		AIClient: aiClient,
		Catalog:  catalog,
	}
	// nil の *Expander をインターフェースに入れないよう、有効時のみ設定します。
	if cfg.Runner.FetchReferences {
		expander, err := BuildExpander(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		args.Expander = expander
	}

	manager, err := workflow.New(args)
	if err != nil {
		return nil, fmt.Errorf("ワークフローマネージャーの初期化に失敗しました: %w", err)
	}
	return manager, nil
}

// BuildExpander は共通の HTTP クライアントから参考資料の本文抽出器を組み立てます。
func BuildExpander(cfg *config.Config, httpClient httpkit.ClientInterface) (*reference.Expander, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	extractor, err := extract.NewExtractor(httpClient)
	if err != nil {
		return nil, fmt.Errorf("extractor の初期化に失敗しました: %w", err)
	}
	expander, err := reference.NewExpander(extractor,
		reference.WithMaxChars(cfg.Runner.ReferenceMaxChars),
		reference.WithMaxFetches(cfg.Runner.MaxReferenceFetches),
	)
	if err != nil {
		return nil, fmt.Errorf("参考資料エクスパンダーの初期化に失敗しました: %w", err)
	}
	return expander, nil
}

// BuildPublisher はローカルディスクへ書き出す ArticlePublisher を構築します。
func BuildPublisher() *publisher.ArticlePublisher {
	return publisher.NewArticlePublisher(publisher.LocalWriter{}, publisher.NewMarkdownRenderer())
}

// InitializeAIClient はプロバイダに応じた AI クライアントを初期化します。
func InitializeAIClient(ctx context.Context, cfg *config.Config) (adapters.GenerativeModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := adapters.NewOpenAIClient(adapters.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
		}
		slog.DebugContext(ctx, "AI client initialized", "provider", cfg.Provider)
		return client, nil
	case config.ProviderGemini:
		client, err := adapters.NewGeminiClient(ctx, adapters.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			ProjectID:   cfg.ProjectID,
			LocationID:  cfg.LocationID,
			Temperature: genai.Ptr(defaultGeminiTemperature),
		})
		if err != nil {
			return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
		}
		slog.DebugContext(ctx, "AI client initialized", "provider", cfg.Provider)
		return client, nil
	default:
		return nil, fmt.Errorf("サポートされていないプロバイダです: %s", cfg.Provider)
	}
}
