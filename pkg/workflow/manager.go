package workflow

import (
	"fmt"

	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/config"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/prompts"
	"github.com/shouni/go-seo-writer/pkg/runner"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Config        config.Config
	AIClient      adapters.GenerativeModel
	Catalog       *domain.Catalog
	PromptBuilder prompts.PromptBuilder     // nil の場合は埋め込みテンプレートを使います
	Expander      runner.ReferenceExpander // nil の場合は参考 URL を展開しません
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理し、
// セッションごとの Controller を払い出します。
type Manager struct {
	catalog *domain.Catalog
	runners Runners
}

// New は、設定と AI クライアントを基に新しい Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.AIClient == nil {
		return nil, fmt.Errorf("AIClient は必須です")
	}
	if args.Catalog == nil {
		return nil, fmt.Errorf("Catalog は必須です")
	}

	pb := args.PromptBuilder
	if pb == nil {
		var err error
		pb, err = prompts.NewTextPromptBuilder()
		if err != nil {
			return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗しました: %w", err)
		}
	}

	return &Manager{
		catalog: args.Catalog,
		runners: Runners{
			Analysis: runner.NewAnalysisRunner(args.Config, pb, args.AIClient),
			Article:  runner.NewArticleRunner(args.Config, pb, args.AIClient, args.Expander),
			Image:    runner.NewImageRunner(args.Config, pb, args.AIClient),
		},
	}, nil
}

// Runners は構築済みの Runner 群を返します。
func (m *Manager) Runners() Runners {
	return m.runners
}

// Catalog はフォームの選択肢を返します。
func (m *Manager) Catalog() *domain.Catalog {
	return m.catalog
}

// NewController は新しいセッション用の Controller を返します。
func (m *Manager) NewController() *Controller {
	return NewController(m.catalog, m.runners)
}
