package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-seo-writer/pkg/domain"
)

// MaxGroundingSources は分析結果に残す引用元の上限です。
const MaxGroundingSources = 10

// ErrNoJSONObject はテキスト中に JSON オブジェクトらしき範囲が見つからない場合のエラーです。
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject は最初の '{' から最後の '}' までを切り出します。
// 前後の説明文やコードフェンスは除去できますが、複数の JSON ブロックが
// 含まれる場合はそれらをまたいだ範囲を返すため、パースに失敗します。
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// analysisPayload はモデルが返す JSON の形です。欠損値は DefaultAnalysis で補完します。
type analysisPayload struct {
	Difficulty       string   `json:"difficulty"`
	DifficultyReason string   `json:"difficultyReason"`
	RelatedKeywords  []string `json:"relatedKeywords"`
	CompetitorTopics []string `json:"competitorTopics"`
	SuggestedOutline string   `json:"suggestedOutline"`
}

// DefaultAnalysis は欠損フィールドを埋めるための既定値です。
func DefaultAnalysis() domain.AnalysisData {
	return domain.AnalysisData{
		Difficulty:       domain.DifficultyMedium,
		DifficultyReason: "Analysis unavailable",
		RelatedKeywords:  []string{},
		CompetitorTopics: []string{},
		SuggestedOutline: "",
		GroundingSources: []domain.GroundingSource{},
	}
}

// ParseAnalysis はモデルの応答テキストから分析結果を取り出し、欠損値を既定値で補完します。
// GroundingSources は応答本文には含まれないため、呼び出し側で設定します。
func ParseAnalysis(text string) (domain.AnalysisData, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return domain.AnalysisData{}, err
	}

	var p analysisPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.AnalysisData{}, fmt.Errorf("分析結果の JSON パースに失敗しました: %w", err)
	}
	return mergeAnalysis(p), nil
}

func mergeAnalysis(p analysisPayload) domain.AnalysisData {
	out := DefaultAnalysis()
	if d, ok := domain.ParseDifficulty(p.Difficulty); ok {
		out.Difficulty = d
	}
	if p.DifficultyReason != "" {
		out.DifficultyReason = p.DifficultyReason
	}
	if p.RelatedKeywords != nil {
		out.RelatedKeywords = p.RelatedKeywords
	}
	if p.CompetitorTopics != nil {
		out.CompetitorTopics = p.CompetitorTopics
	}
	out.SuggestedOutline = p.SuggestedOutline
	return out
}

// DedupeSources はタイトルと URI の両方を持つ引用元だけを残し、URI で重複を除いて
// 先に出現したものを優先し、最大 limit 件に切り詰めます。戻り値は nil になりません。
func DedupeSources(sources []domain.GroundingSource, limit int) []domain.GroundingSource {
	out := make([]domain.GroundingSource, 0, min(len(sources), limit))
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if len(out) >= limit {
			break
		}
		if s.Title == "" || s.URI == "" {
			continue
		}
		if _, dup := seen[s.URI]; dup {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	return out
}
