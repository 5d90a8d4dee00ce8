package publisher

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var titleRegex = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)

// MarkdownRenderer は記事やアウトラインの Markdown を HTML に変換します。
// 生の HTML タグは出力せず、エスケープしたまま残します。
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer は GFM 拡張を有効にした MarkdownRenderer を生成します。
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render は Markdown を HTML 文字列に変換します。
func (r *MarkdownRenderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown の変換に失敗しました: %w", err)
	}
	return buf.String(), nil
}

// ExtractTitle は最初の H1 見出しのテキストを返します。見つからない場合は空文字です。
func ExtractTitle(markdown string) string {
	m := titleRegex.FindStringSubmatch(markdown)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// BuildArticleMarkdown は本文の末尾に挿絵への参照を付け加えた Markdown を返します。
// imagePaths が空の場合は本文をそのまま返します。
func BuildArticleMarkdown(article string, imagePaths []string, prompts []string) string {
	if len(imagePaths) == 0 {
		return article
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(article, "\n"))
	sb.WriteString("\n\n")
	for i, p := range imagePaths {
		alt := fmt.Sprintf("illustration %d", i+1)
		if i < len(prompts) && prompts[i] != "" {
			alt = strings.ReplaceAll(prompts[i], "]", "")
		}
		fmt.Fprintf(&sb, "![%s](%s)\n\n", alt, p)
	}
	return sb.String()
}
