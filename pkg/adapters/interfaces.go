package adapters

import (
	"context"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

// ResponseFormat はテキスト生成時に要求する出力形式です。
type ResponseFormat int

const (
	// FormatText は自由形式のテキスト（Markdown を含む）です。
	FormatText ResponseFormat = iota
	// FormatStringArray は JSON の文字列配列を要求する構造化出力です。
	FormatStringArray
)

// TextRequest はテキスト生成の1回分のリクエストです。
type TextRequest struct {
	Model             string
	Prompt            string
	SystemInstruction string
	// WebSearch が true の場合、検索グラウンディングを有効にします。
	// Gemini では検索ツールと構造化出力は併用できないため、Format は無視されます。
	WebSearch bool
	Format    ResponseFormat
}

// TextResponse はテキスト生成の結果です。Sources は検索グラウンディングの引用元（未整形）です。
type TextResponse struct {
	Text    string
	Sources []domain.GroundingSource
}

// ImageRequest は画像生成の1回分のリクエストです。
type ImageRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
}

// ImageResponse は生成された画像のバイト列と MIME タイプです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// TextGenerator はテキスト生成を担います。
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error)
}

// ImageGenerator は画像生成を担います。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// GenerativeModel はテキストと画像の両方を生成できる外部モデルのクライアントです。
type GenerativeModel interface {
	TextGenerator
	ImageGenerator
}
