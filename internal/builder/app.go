package builder

import (
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-seo-writer/internal/config"
	"github.com/shouni/go-seo-writer/pkg/adapters"
	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config         // Configは、環境変数と設定ファイルから読み込まれた設定です（APIキー、モデル名など）。
	Options  config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です。
	Catalog  *domain.Catalog        // Catalogは、フォームで選べる言語・文字数・スタイルの一覧です。
	Manager  *workflow.Manager      // Managerは、分析・執筆・挿絵の各 Runner を束ねたものです。

	httpClient httpkit.ClientInterface // httpClient は参考資料の取得に使う共通クライアント
	aiClient   adapters.GenerativeModel
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.ClientInterface,
	catalog *domain.Catalog,
	aiClient adapters.GenerativeModel,
	manager *workflow.Manager,
) AppContext {
	return AppContext{
		Config:   cfg,
		Options:  cfg.Options,
		Catalog:  catalog,
		Manager:    manager,
		httpClient: httpClient,
		aiClient:   aiClient,
	}
}

// AIClient は共通の AI クライアントを返します。
func (a *AppContext) AIClient() adapters.GenerativeModel {
	return a.aiClient
}

// HTTPClient は共通の HTTP クライアントを返します。
func (a *AppContext) HTTPClient() httpkit.ClientInterface {
	return a.httpClient
}
