package publisher

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

const defaultImageDirName = "images"

// OutputWriter はデータを保存先に書き出すためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}

// LocalWriter はローカルファイルシステムに書き出す OutputWriter です。
type LocalWriter struct{}

// Write は親ディレクトリを作成してからファイルを書き込みます。
func (LocalWriter) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	// WriteHTML が true の場合、Markdown と同名の .html も出力します。
	WriteHTML bool
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath string
	HTMLPath     string
	ImagePaths   []string
}

// ArticlePublisher は生成した記事と挿絵を保存します。
type ArticlePublisher struct {
	writer   OutputWriter
	renderer *MarkdownRenderer
}

// NewArticlePublisher は ArticlePublisher を生成します。
func NewArticlePublisher(writer OutputWriter, renderer *MarkdownRenderer) *ArticlePublisher {
	return &ArticlePublisher{writer: writer, renderer: renderer}
}

// Publish は挿絵の保存、Markdown の書き出し、（任意で）HTML 変換を行います。
func (p *ArticlePublisher) Publish(ctx context.Context, keyword, article string, images []domain.GeneratedImage, opts Options) (PublishResult, error) {
	result := PublishResult{}

	// 1. 挿絵の保存
	relPaths := make([]string, 0, len(images))
	imgPrompts := make([]string, 0, len(images))
	for i, img := range images {
		mimeType, data, err := DecodeDataURI(img.URL)
		if err != nil {
			return result, fmt.Errorf("挿絵 %d のデコードに失敗しました: %w", i+1, err)
		}
		name := ImageFilename(keyword, i, mimeType)
		fullPath := filepath.Join(opts.OutputDir, defaultImageDirName, name)
		if err := p.writer.Write(ctx, fullPath, data); err != nil {
			return result, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		slog.InfoContext(ctx, "挿絵を保存しました", "index", i+1, "path", fullPath)

		result.ImagePaths = append(result.ImagePaths, fullPath)
		relPaths = append(relPaths, path.Join(defaultImageDirName, name))
		imgPrompts = append(imgPrompts, img.Prompt)
	}

	// 2. Markdown の書き出し
	content := BuildArticleMarkdown(article, relPaths, imgPrompts)
	result.MarkdownPath = filepath.Join(opts.OutputDir, ArticleFilename(keyword))
	if err := p.writer.Write(ctx, result.MarkdownPath, []byte(content)); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}

	// 3. HTML 変換
	if opts.WriteHTML && p.renderer != nil {
		body, err := p.renderer.Render(content)
		if err != nil {
			return result, err
		}
		title := ExtractTitle(article)
		if title == "" {
			title = keyword
		}
		doc := fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n%s</body></html>\n",
			html.EscapeString(title), body)

		result.HTMLPath = strings.TrimSuffix(result.MarkdownPath, filepath.Ext(result.MarkdownPath)) + ".html"
		if err := p.writer.Write(ctx, result.HTMLPath, []byte(doc)); err != nil {
			return result, fmt.Errorf("HTMLファイルの書き込みに失敗しました: %w", err)
		}
	}

	return result, nil
}
