package runner

import (
	"context"
	"errors"
	"time"
)

// 利用者に表示するエラーです。原因は各 Runner がログに出力し、ここには含めません。
var (
	ErrAnalyzeFailed = errors.New("failed to analyze keyword")
	ErrParseAnalysis = errors.New("failed to parse analysis results")
	ErrArticleFailed = errors.New("failed to generate article")
	ErrImagesFailed  = errors.New("failed to generate images")
)

// withTimeout は d が正の場合のみタイムアウト付きのコンテキストを返します。
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
