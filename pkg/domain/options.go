package domain

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"
)

//go:embed options.yaml
var optionsYAML []byte

// Option はセレクトボックスの1項目です。
type Option[T comparable] struct {
	Value T      `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Catalog はフォームで選択できる言語・文字数・文体の一覧と初期値です。
type Catalog struct {
	Languages     []string         `yaml:"languages" json:"languages"`
	WordCounts    []Option[int]    `yaml:"word_counts" json:"wordCounts"`
	ArticleStyles []Option[string] `yaml:"article_styles" json:"articleStyles"`
	Defaults      struct {
		Language     string `yaml:"language" json:"language"`
		WordCount    int    `yaml:"word_count" json:"wordCount"`
		ArticleStyle string `yaml:"article_style" json:"articleStyle"`
	} `yaml:"defaults" json:"defaults"`
}

// ParseCatalog は YAML から Catalog を読み込み、初期値が選択肢に含まれているか検証します。
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("選択肢定義のパースに失敗しました: %w", err)
	}
	if len(c.Languages) == 0 || len(c.WordCounts) == 0 || len(c.ArticleStyles) == 0 {
		return nil, fmt.Errorf("選択肢定義に空の項目があります")
	}
	probe := c.DefaultForm()
	probe.Keyword = "probe"
	if err := probe.Validate(&c); err != nil {
		return nil, fmt.Errorf("初期値が選択肢に含まれていません: %w", err)
	}
	return &c, nil
}

// LoadCatalog は埋め込みの options.yaml から Catalog を返します。
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(optionsYAML)
}

// HasWordCount は指定の文字数が選択肢に含まれるかを返します。
func (c *Catalog) HasWordCount(n int) bool {
	for _, o := range c.WordCounts {
		if o.Value == n {
			return true
		}
	}
	return false
}

// HasStyle は指定の文体が選択肢に含まれるかを返します。
func (c *Catalog) HasStyle(style string) bool {
	for _, o := range c.ArticleStyles {
		if o.Value == style {
			return true
		}
	}
	return false
}

// DefaultForm は初期値を埋めた空のフォームを返します。
func (c *Catalog) DefaultForm() FormData {
	return FormData{
		Language:     c.Defaults.Language,
		WordCount:    c.Defaults.WordCount,
		ArticleStyle: c.Defaults.ArticleStyle,
	}
}
