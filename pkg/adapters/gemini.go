package adapters

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

// ErrNoImage はモデルの応答に画像データが含まれていなかった場合のエラーです。
var ErrNoImage = errors.New("model returned no image data")

// GeminiConfig は Gemini クライアントの接続設定です。
// APIKey が空で ProjectID が指定されている場合は Vertex AI バックエンドを使います。
type GeminiConfig struct {
	APIKey      string
	ProjectID   string
	LocationID  string
	Temperature *float32
}

// GeminiClient は google.golang.org/genai を使った GenerativeModel の実装です。
type GeminiClient struct {
	models      *genai.Models
	temperature *float32
}

// NewGeminiClient は Gemini API (または Vertex AI) のクライアントを初期化します。
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIKey == "" {
		if cfg.ProjectID == "" {
			return nil, errors.New("gemini: APIKey または ProjectID のどちらかが必要です")
		}
		cc = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.LocationID,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini クライアントの作成に失敗しました: %w", err)
	}
	return &GeminiClient{models: client.Models, temperature: cfg.Temperature}, nil
}

// GenerateText はテキストを生成します。WebSearch 指定時は Google 検索ツールを付与し、
// グラウンディングの引用元を Sources に詰めて返します。
func (g *GeminiClient) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	resp, err := g.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), g.textConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content (model=%s): %w", req.Model, err)
	}
	return &TextResponse{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}, nil
}

func (g *GeminiClient) textConfig(req TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: g.temperature}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	switch {
	case req.WebSearch:
		// 検索ツールと responseMimeType は同時に指定できない
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case req.Format == FormatStringArray:
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}
	return cfg
}

// GenerateImage は画像モダリティを指定して1枚の画像を生成し、最初のインライン画像を返します。
func (g *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	resp, err := g.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate image (model=%s): %w", req.Model, err)
	}
	img := firstInlineImage(resp)
	if img == nil {
		return nil, ErrNoImage
	}
	return img, nil
}

// groundingSources は最初の候補のグラウンディングチャンクから Web 引用元を取り出します。
// フィルタや重複除去は呼び出し側の責務です。
func groundingSources(resp *genai.GenerateContentResponse) []domain.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var sources []domain.GroundingSource
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, domain.GroundingSource{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

func firstInlineImage(resp *genai.GenerateContentResponse) *ImageResponse {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &ImageResponse{Data: part.InlineData.Data, MimeType: mimeType}
		}
	}
	return nil
}
