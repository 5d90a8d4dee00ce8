package workflow

import (
	"github.com/shouni/go-seo-writer/pkg/domain"
)

// Action は状態遷移を引き起こす操作または外部呼び出しの結果です。
type Action int

const (
	ActionSubmit Action = iota
	ActionAnalysisSucceeded
	ActionAnalysisFailed
	ActionGenerateArticle
	ActionArticleSucceeded
	ActionArticleFailed
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionAnalysisSucceeded:
		return "analysis_succeeded"
	case ActionAnalysisFailed:
		return "analysis_failed"
	case ActionGenerateArticle:
		return "generate_article"
	case ActionArticleSucceeded:
		return "article_succeeded"
	case ActionArticleFailed:
		return "article_failed"
	case ActionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Transition は現在の状態と操作から次の状態を返します。
// 許可されない組み合わせの場合は (s, false) を返します。
// 失敗は直前の安定状態（IDLE / REVIEW）に戻り、StateError には遷移しません。
func Transition(s domain.AppState, a Action) (domain.AppState, bool) {
	switch s {
	case domain.StateIdle:
		if a == ActionSubmit {
			return domain.StateAnalyzing, true
		}
	case domain.StateAnalyzing:
		switch a {
		case ActionAnalysisSucceeded:
			return domain.StateReview, true
		case ActionAnalysisFailed, ActionReset:
			return domain.StateIdle, true
		}
	case domain.StateReview:
		switch a {
		case ActionGenerateArticle:
			return domain.StateGenerating, true
		case ActionReset:
			return domain.StateIdle, true
		}
	case domain.StateGenerating:
		switch a {
		case ActionArticleSucceeded:
			return domain.StateComplete, true
		case ActionArticleFailed:
			return domain.StateReview, true
		case ActionReset:
			return domain.StateIdle, true
		}
	case domain.StateComplete:
		if a == ActionReset {
			return domain.StateIdle, true
		}
	case domain.StateError:
		// 宣言のみで、この状態に入る遷移はない
	}
	return s, false
}
