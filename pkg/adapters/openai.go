package adapters

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig は OpenAI 互換エンドポイントの接続設定です。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// OpenAIClient は openai-go SDK を使った GenerativeModel の実装です。
// Web 検索によるグラウンディングには対応しないため、Sources は常に空です。
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient は API キー (と任意の BaseURL) からクライアントを作成します。
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}, nil
}

// GenerateText は chat completions でテキストを生成します。
func (o *OpenAIClient) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemInstruction != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemInstruction))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion (model=%s): %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}
	return &TextResponse{Text: resp.Choices[0].Message.Content}, nil
}

// GenerateImage は images API で base64 形式の画像を1枚生成します。
func (o *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(req.Model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat("b64_json"),
		Size:           openai.ImageGenerateParamsSize(imageSizeFor(req.AspectRatio)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation (model=%s): %w", req.Model, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: 画像データのデコードに失敗しました: %w", err)
	}
	return &ImageResponse{Data: data, MimeType: "image/png"}, nil
}

// imageSizeFor はアスペクト比を images API が受け付けるサイズ文字列に変換します。
func imageSizeFor(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return "1792x1024"
	case "9:16":
		return "1024x1792"
	default:
		return "1024x1024"
	}
}
