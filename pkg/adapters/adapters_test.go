package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

func TestGroundingSources(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{Title: "A", URI: "https://a.example"}},
					{},
					nil,
					{Web: &genai.GroundingChunkWeb{Title: "", URI: "https://b.example"}},
				},
			},
		}},
	}

	got := groundingSources(resp)
	assert.Equal(t, []domain.GroundingSource{
		{Title: "A", URI: "https://a.example"},
		{Title: "", URI: "https://b.example"},
	}, got)

	assert.Nil(t, groundingSources(nil))
	assert.Nil(t, groundingSources(&genai.GenerateContentResponse{}))
	assert.Nil(t, groundingSources(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestFirstInlineImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here is your image"},
				{InlineData: &genai.Blob{Data: []byte{0x89, 0x50}, MIMEType: "image/jpeg"}},
			}},
		}},
	}
	img := firstInlineImage(resp)
	require.NotNil(t, img)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, []byte{0x89, 0x50}, img.Data)

	t.Run("missing mime defaults to png", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{Data: []byte{1}}}}},
		}}}
		assert.Equal(t, "image/png", firstInlineImage(resp).MimeType)
	})

	t.Run("text only", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}},
		}}}
		assert.Nil(t, firstInlineImage(resp))
	})
}

func TestGeminiTextConfig(t *testing.T) {
	g := &GeminiClient{}

	t.Run("web search disables structured output", func(t *testing.T) {
		cfg := g.textConfig(TextRequest{WebSearch: true, Format: FormatStringArray, SystemInstruction: "sys"})
		require.Len(t, cfg.Tools, 1)
		assert.NotNil(t, cfg.Tools[0].GoogleSearch)
		assert.Empty(t, cfg.ResponseMIMEType)
		assert.Nil(t, cfg.ResponseSchema)
		require.NotNil(t, cfg.SystemInstruction)
	})

	t.Run("string array schema", func(t *testing.T) {
		cfg := g.textConfig(TextRequest{Format: FormatStringArray})
		assert.Empty(t, cfg.Tools)
		assert.Equal(t, "application/json", cfg.ResponseMIMEType)
		require.NotNil(t, cfg.ResponseSchema)
		assert.Equal(t, genai.TypeArray, cfg.ResponseSchema.Type)
		assert.Nil(t, cfg.SystemInstruction)
	})
}

func TestImageSizeFor(t *testing.T) {
	assert.Equal(t, "1792x1024", imageSizeFor("16:9"))
	assert.Equal(t, "1024x1792", imageSizeFor("9:16"))
	assert.Equal(t, "1024x1024", imageSizeFor(""))
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: "http://localhost:1234/v1"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
