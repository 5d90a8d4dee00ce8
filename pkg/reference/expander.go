package reference

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-seo-writer/pkg/domain"
	"github.com/shouni/go-seo-writer/pkg/parser"
)

const (
	defaultMaxChars   = 4000
	defaultMaxFetches = 3
	maxTitleRunes     = 120
)

var urlRegex = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)

// TextExtractor は Web ページを取得して本文テキストを抽出します。
// go-web-exact の *extract.Extractor がこれを満たします。
type TextExtractor interface {
	FetchAndExtractText(ctx context.Context, url string) (string, bool, error)
}

// Expander は補足資料に含まれる URL を取得し、本文を抽出します。
type Expander struct {
	extractor  TextExtractor
	maxChars   int
	maxFetches int
}

// Option は Expander の設定を変更します。
type Option func(*Expander)

// WithMaxChars は1件あたりの抜粋の最大文字数を設定します。
func WithMaxChars(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

// WithMaxFetches は取得する URL の上限を設定します。
func WithMaxFetches(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxFetches = n
		}
	}
}

// NewExpander は本文抽出器を注入して Expander を生成します。
func NewExpander(extractor TextExtractor, opts ...Option) (*Expander, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor は必須です")
	}
	e := &Expander{
		extractor:  extractor,
		maxChars:   defaultMaxChars,
		maxFetches: defaultMaxFetches,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FindURLs はテキスト中の http(s) URL を出現順に重複なく返します。
func FindURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, m := range urlRegex.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?")
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}

// Expand は text 中の URL を並列に取得し、取得できたものだけを出現順に返します。
// 個々の失敗はログに出力して読み飛ばします。
func (e *Expander) Expand(ctx context.Context, text string) []domain.ReferenceExcerpt {
	urls := FindURLs(text)
	if len(urls) > e.maxFetches {
		urls = urls[:e.maxFetches]
	}
	if len(urls) == 0 {
		return nil
	}

	results := make([]*domain.ReferenceExcerpt, len(urls))
	var eg errgroup.Group
	for i, u := range urls {
		eg.Go(func() error {
			excerpt, err := e.Fetch(ctx, u)
			if err != nil {
				slog.WarnContext(ctx, "Reference fetch failed, skipping", "url", u, "error", err)
				return nil
			}
			results[i] = excerpt
			return nil
		})
	}
	_ = eg.Wait()

	excerpts := make([]domain.ReferenceExcerpt, 0, len(results))
	for _, r := range results {
		if r != nil {
			excerpts = append(excerpts, *r)
		}
	}
	return excerpts
}

// Fetch は1件の URL を取得して本文の抜粋を返します。
// 抽出結果の先頭行が短ければ、それを見出しとして扱います。
func (e *Expander) Fetch(ctx context.Context, rawURL string) (*domain.ReferenceExcerpt, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL: %s", rawURL)
	}

	text, _, err := e.extractor.FetchAndExtractText(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from URL: %w", err)
	}

	title, body := splitTitle(text)
	content := strings.Join(strings.Fields(body), " ")
	if content == "" {
		return nil, fmt.Errorf("no readable content: %s", rawURL)
	}

	return &domain.ReferenceExcerpt{
		URL:   rawURL,
		Title: title,
		Text:  parser.TruncateRunes(content, e.maxChars),
	}, nil
}

func splitTitle(text string) (string, string) {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	if !found || strings.TrimSpace(rest) == "" || len([]rune(first)) > maxTitleRunes {
		return "", text
	}
	return first, rest
}
