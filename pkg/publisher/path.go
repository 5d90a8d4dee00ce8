package publisher

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	defaultArticleName = "article"
	maxSlugRunes       = 80
)

// Slugify はキーワードをファイル名に使える小文字のスラッグに変換します。
// 英数字以外（各言語の文字は保持）はハイフンにまとめます。
func Slugify(s string) string {
	var sb strings.Builder
	pendingDash := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= maxSlugRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
				n++
			}
			pendingDash = false
			sb.WriteRune(r)
			n++
			continue
		}
		pendingDash = true
	}
	return strings.Trim(sb.String(), "-")
}

// ArticleFilename は記事のダウンロード用ファイル名（.md）を返します。
func ArticleFilename(keyword string) string {
	slug := Slugify(keyword)
	if slug == "" {
		slug = defaultArticleName
	}
	return slug + ".md"
}

// ImageFilename は挿絵のダウンロード用ファイル名を返します。index は 0 始まりです。
func ImageFilename(keyword string, index int, mimeType string) string {
	slug := Slugify(keyword)
	if slug == "" {
		slug = defaultArticleName
	}
	return fmt.Sprintf("%s-image-%d%s", slug, index+1, extensionFor(mimeType))
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
