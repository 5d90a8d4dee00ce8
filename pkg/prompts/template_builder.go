package prompts

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrUnknownMode は未登録のモードが指定されたことを示します。
var ErrUnknownMode = errors.New("unknown prompt mode")

// modeOrder は分析、執筆、挿絵プロンプトの実行順です。
var modeOrder = []string{ModeAnalysis, ModeArticle, ModeImagePrompts}

// PromptBuilder は、フォームと分析結果から各フェーズのプロンプトを組み立てます。
type PromptBuilder interface {
	Build(mode string, data TemplateData) (string, error)
}

// TextPromptBuilder は分析・執筆・挿絵プロンプトの3種類のテンプレートを保持します。
// 欠けたキーは実行時エラーになり、空欄のままモデルへ送られることはありません。
type TextPromptBuilder struct {
	byMode map[string]*template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// NewTextPromptBuilder は埋め込まれた全モードのテンプレートを読み込みます。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	byMode := make(map[string]*template.Template, len(modeOrder))
	for _, mode := range modeOrder {
		src := strings.TrimSpace(allTemplates[mode])
		if src == "" {
			return nil, fmt.Errorf("%s 用のプロンプトが埋め込まれていません", mode)
		}
		tmpl, err := template.New(mode).Funcs(funcs).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%s 用のプロンプトを解析できません: %w", mode, err)
		}
		byMode[mode] = tmpl
	}
	return &TextPromptBuilder{byMode: byMode}, nil
}

// Modes は利用できるモードを実行順に返します。
func Modes() []string {
	return append([]string(nil), modeOrder...)
}

// Build は mode のテンプレートに data を流し込み、前後の空白を除いたプロンプトを返します。
// どのモードもキーワードが空の場合はエラーになります。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.byMode[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q (対応: %s)", ErrUnknownMode, mode, strings.Join(modeOrder, ", "))
	}
	if strings.TrimSpace(data.Form.Keyword) == "" {
		return "", fmt.Errorf("%s 用のプロンプトにはキーワードが必要です", mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%s 用のプロンプトを生成できません: %w", mode, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
