package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Len(t, c.Languages, 7)
	assert.Contains(t, c.Languages, "Chinese (Traditional)")
	assert.True(t, c.HasWordCount(1500))
	assert.False(t, c.HasWordCount(750))
	assert.True(t, c.HasStyle("Listicle / Step-by-Step"))

	form := c.DefaultForm()
	assert.Equal(t, "English", form.Language)
	assert.Equal(t, 1000, form.WordCount)
	assert.Equal(t, "Comprehensive Guide", form.ArticleStyle)
	assert.Empty(t, form.Keyword)
}

func TestParseCatalog_RejectsBadDefaults(t *testing.T) {
	_, err := ParseCatalog([]byte(`
languages: [English]
word_counts: [{value: 500, label: Short}]
article_styles: [{value: Guide, label: Guide}]
defaults: {language: German, word_count: 500, article_style: Guide}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOption)

	_, err = ParseCatalog([]byte(`{ invalid yaml`))
	assert.Error(t, err)
}

func TestFormData_Validate(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	valid := c.DefaultForm()
	valid.Keyword = "best coffee machines 2024"

	tests := []struct {
		name    string
		mutate  func(f *FormData)
		wantErr error
	}{
		{name: "valid", mutate: func(*FormData) {}},
		{name: "empty keyword", mutate: func(f *FormData) { f.Keyword = "" }, wantErr: ErrEmptyKeyword},
		{name: "whitespace keyword", mutate: func(f *FormData) { f.Keyword = "  \t" }, wantErr: ErrEmptyKeyword},
		{name: "unknown language", mutate: func(f *FormData) { f.Language = "Klingon" }, wantErr: ErrUnsupportedOption},
		{name: "unknown word count", mutate: func(f *FormData) { f.WordCount = 42 }, wantErr: ErrUnsupportedOption},
		{name: "unknown style", mutate: func(f *FormData) { f.ArticleStyle = "Haiku" }, wantErr: ErrUnsupportedOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := f.Validate(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nil catalog only checks keyword", func(t *testing.T) {
		assert.NoError(t, FormData{Keyword: "x", Language: "Klingon"}.Validate(nil))
		assert.ErrorIs(t, FormData{}.Validate(nil), ErrEmptyKeyword)
	})
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"High", DifficultyHigh, true},
		{"low", DifficultyLow, true},
		{" MEDIUM ", DifficultyMedium, true},
		{"", "", false},
		{"Extreme", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDifficulty(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalysisData_Clone(t *testing.T) {
	orig := AnalysisData{
		RelatedKeywords:  []string{"a"},
		CompetitorTopics: []string{"b"},
		GroundingSources: []GroundingSource{{Title: "t", URI: "u"}},
	}
	c := orig.Clone()
	c.RelatedKeywords[0] = "changed"
	c.GroundingSources[0].URI = "changed"

	assert.Equal(t, "a", orig.RelatedKeywords[0])
	assert.Equal(t, "u", orig.GroundingSources[0].URI)
}

func TestAppState_Busy(t *testing.T) {
	assert.True(t, StateAnalyzing.Busy())
	assert.True(t, StateGenerating.Busy())
	assert.False(t, StateIdle.Busy())
	assert.False(t, StateReview.Busy())
	assert.False(t, StateComplete.Busy())
}
