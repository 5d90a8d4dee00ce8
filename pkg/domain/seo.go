package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyKeyword はキーワード未入力のまま分析を要求した場合のエラーです。
	ErrEmptyKeyword = errors.New("keyword is required")
	// ErrUnsupportedOption は選択肢にない言語・文字数・文体が指定された場合のエラーです。
	ErrUnsupportedOption = errors.New("unsupported option")
)

// Difficulty はキーワード難易度の3段階評価です。
type Difficulty string

const (
	DifficultyLow    Difficulty = "Low"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHigh   Difficulty = "High"
)

// ParseDifficulty は大文字小文字を無視して難易度を解釈します。
// 解釈できない値の場合は false を返します。
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return DifficultyLow, true
	case "medium":
		return DifficultyMedium, true
	case "high":
		return DifficultyHigh, true
	}
	return "", false
}

// FormData はユーザーがフォームで入力した記事生成の条件です。
type FormData struct {
	Keyword       string `json:"keyword"`
	Language      string `json:"language"`
	WordCount     int    `json:"wordCount"`
	ArticleStyle  string `json:"articleStyle"`
	CustomContext string `json:"customContext"`
}

// Validate はキーワードの必須チェックと、選択肢の妥当性チェックを行います。
// catalog が nil の場合は必須チェックのみ行います。
func (f FormData) Validate(catalog *Catalog) error {
	if strings.TrimSpace(f.Keyword) == "" {
		return ErrEmptyKeyword
	}
	if catalog == nil {
		return nil
	}
	if !slices.Contains(catalog.Languages, f.Language) {
		return fmt.Errorf("%w: language %q", ErrUnsupportedOption, f.Language)
	}
	if !catalog.HasWordCount(f.WordCount) {
		return fmt.Errorf("%w: word count %d", ErrUnsupportedOption, f.WordCount)
	}
	if !catalog.HasStyle(f.ArticleStyle) {
		return fmt.Errorf("%w: article style %q", ErrUnsupportedOption, f.ArticleStyle)
	}
	return nil
}

// GroundingSource は検索グラウンディングで得られた Web の引用元です。URI が一意キーです。
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// AnalysisData はキーワード分析の結果です。
// SuggestedOutline のみ記事生成前にユーザーが編集できます。
type AnalysisData struct {
	Difficulty       Difficulty        `json:"difficulty"`
	DifficultyReason string            `json:"difficultyReason"`
	RelatedKeywords  []string          `json:"relatedKeywords"`
	CompetitorTopics []string          `json:"competitorTopics"`
	SuggestedOutline string            `json:"suggestedOutline"`
	GroundingSources []GroundingSource `json:"groundingSources"`
}

// Clone はスライスまで複製したコピーを返します。
func (a AnalysisData) Clone() AnalysisData {
	a.RelatedKeywords = append([]string{}, a.RelatedKeywords...)
	a.CompetitorTopics = append([]string{}, a.CompetitorTopics...)
	a.GroundingSources = append([]GroundingSource{}, a.GroundingSources...)
	return a
}

// MaxImagesPerArticle は1記事あたりの挿絵の上限枚数です。
const MaxImagesPerArticle = 2

// GeneratedImage は生成された挿絵です。URL は base64 の data URI です。
type GeneratedImage struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// ReferenceExcerpt は参考資料 URL から抽出した本文の抜粋です。
type ReferenceExcerpt struct {
	URL   string
	Title string
	Text  string
}
