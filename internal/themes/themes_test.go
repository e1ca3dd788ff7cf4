package themes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Linattendu/projet-moteur-recherche/index"
	"github.com/Linattendu/projet-moteur-recherche/internal/tokenizer"
	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

func buildIndex(t *testing.T, opts []index.Option, bodies ...string) *index.TermIndex {
	t.Helper()
	docs := make([]model.Document, len(bodies))
	for i, body := range bodies {
		docs[i] = model.Document{
			Title:       "doc " + string(rune('a'+i)),
			PublishedAt: time.Date(2023, 1, i+1, 0, 0, 0, 0, time.UTC),
			SourceURL:   "http://example.com/" + string(rune('a'+i)),
			Body:        body,
		}
	}
	ti, err := index.Build(docs, opts...)
	require.NoError(t, err)
	return ti
}

func themeNames(dt services.DocumentThemes) []string {
	names := make([]string, len(dt.Themes))
	for i, ts := range dt.Themes {
		names[i] = ts.Theme
	}
	return names
}

func TestClassify(t *testing.T) {
	ti := buildIndex(t, nil,
		"The hospital hired a doctor and a nurse",
		"Carbon pollution and greenhouse warming call for research",
		"AI software needs data",
		"Nothing to see here",
	)

	classified := Classify(ti)
	require.Len(t, classified, 4)

	assert.Equal(t, "http://example.com/a", classified[0].URL)
	assert.Equal(t, []string{"health"}, themeNames(classified[0]))

	// four climate keywords outweigh one science keyword
	assert.Equal(t, []string{"climatechange", "science"}, themeNames(classified[1]))
	assert.Greater(t, classified[1].Themes[0].Score, classified[1].Themes[1].Score)

	assert.Equal(t, []string{"technology"}, themeNames(classified[2]), "keywords are case folded")
	assert.Empty(t, classified[3].Themes)
}

func TestClassifyScoreIsSumOfTFIDF(t *testing.T) {
	ti := buildIndex(t, nil, "doctor nurse doctor", "quiet evening")

	doctor, ok := ti.Vocabulary().ID("doctor")
	require.True(t, ok)
	nurse, ok := ti.Vocabulary().ID("nurse")
	require.True(t, ok)
	want := ti.TFIDF().At(0, doctor) + ti.TFIDF().At(0, nurse)

	classified := Classify(ti)
	require.Len(t, classified[0].Themes, 1)
	assert.InDelta(t, want, classified[0].Themes[0].Score, 1e-12)
}

func TestClassifyWithStemming(t *testing.T) {
	opts := []index.Option{index.WithAnalyzer(tokenizer.Analyzer{Stem: true})}
	ti := buildIndex(t, opts, "Students were learning at schools")

	classified := Classify(ti)
	assert.Equal(t, []string{"education"}, themeNames(classified[0]))
}

func TestSubCorpora(t *testing.T) {
	ti := buildIndex(t, nil,
		"one doctor",
		"doctor doctor hospital",
		"school and doctor",
		"plain text",
	)

	groups := SubCorpora(Classify(ti))
	require.Contains(t, groups, "health")
	require.Contains(t, groups, "education")
	assert.NotContains(t, groups, "science")

	health := groups["health"]
	require.Len(t, health, 3)
	assert.Equal(t, "http://example.com/b", health[0].URL, "strongest first")
	for i := 1; i < len(health); i++ {
		assert.GreaterOrEqual(t, health[i-1].Score, health[i].Score)
	}
	assert.Len(t, groups["education"], 1)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"climatechange", "education", "health", "science", "technology"}, Names())
}
