package workflow

import (
	"context"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

// AnalysisRunner は、キーワードを分析してアウトライン案を作成する責務を持ちます。
type AnalysisRunner interface {
	Run(ctx context.Context, form domain.FormData) (domain.AnalysisData, error)
}

// ArticleRunner は、承認済みのアウトラインから記事本文を生成する責務を持ちます。
type ArticleRunner interface {
	Run(ctx context.Context, form domain.FormData, analysis domain.AnalysisData) (string, error)
}

// ImageRunner は、キーワードとアウトラインから挿絵を生成する責務を持ちます。
type ImageRunner interface {
	Run(ctx context.Context, keyword, outline string) ([]domain.GeneratedImage, error)
}

// Runners は Controller が使う Runner 一式です。
type Runners struct {
	Analysis AnalysisRunner
	Article  ArticleRunner
	Image    ImageRunner
}
