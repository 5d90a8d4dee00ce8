package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoImagePrompts は画像プロンプトの配列が空だった場合のエラーです。
var ErrNoImagePrompts = errors.New("no image prompts in response")

// ParseImagePrompts はモデル応答の JSON 文字列配列から画像プロンプトを取り出します。
// 空白だけの要素は捨て、最大 limit 件に切り詰めます。
func ParseImagePrompts(text string, limit int) ([]string, error) {
	raw := strings.TrimSpace(text)
	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("画像プロンプトの JSON パースに失敗しました: %w", err)
	}

	prompts := make([]string, 0, limit)
	for _, p := range items {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		prompts = append(prompts, p)
		if len(prompts) == limit {
			break
		}
	}
	if len(prompts) == 0 {
		return nil, ErrNoImagePrompts
	}
	return prompts, nil
}

// FallbackImagePrompts はプロンプト生成に失敗した場合に使う、キーワードだけから作る定型プロンプトです。
func FallbackImagePrompts(keyword string) []string {
	return []string{
		fmt.Sprintf("a professional photo representing %s", keyword),
		fmt.Sprintf("an illustration showing the concept of %s", keyword),
	}
}

// TruncateRunes は s を先頭 n 文字（rune 単位）に切り詰めます。
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
