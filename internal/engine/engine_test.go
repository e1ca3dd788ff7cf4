package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Linattendu/projet-moteur-recherche/config"
	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

func waterDocs() []model.Document {
	published := func(month time.Month) time.Time {
		return time.Date(2022, month, 10, 0, 0, 0, 0, time.UTC)
	}
	return []model.Document{
		{Title: "Agriculture", Author: "ana", PublishedAt: published(1), SourceURL: "d1", Body: "Water resources are vital for agriculture"},
		{Title: "Quality", Author: "ben", PublishedAt: published(2), SourceURL: "d2", Body: "Monitoring water quality is essential for ecosystems"},
		{Title: "Droughts", Author: "ana", PublishedAt: published(3), SourceURL: "d3", Body: "The preservation of water resources helps prevent droughts"},
	}
}

func newGobStore(t *testing.T, dir string) store.SnapshotStore {
	t.Helper()
	s, err := store.NewGobFileStore(dir, nil)
	require.NoError(t, err)
	return s
}

// newTestEngine returns an engine over a gob store in a fresh directory.
func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	eng := NewEngine(newGobStore(t, dir), config.DefaultIndexSettings())
	t.Cleanup(func() { _ = eng.Close() })
	return eng, dir
}

// newWaterCorpus creates and builds a corpus of the three water documents.
func newWaterCorpus(t *testing.T, eng *Engine, name string) {
	t.Helper()
	require.NoError(t, eng.CreateCorpus(name, config.IndexSettings{}))
	_, err := eng.AddDocuments(name, waterDocs())
	require.NoError(t, err)
	require.NoError(t, eng.BuildIndex(name))
}

func hitURLs(result services.SearchResult) []string {
	urls := make([]string, len(result.Hits))
	for i, h := range result.Hits {
		urls[i] = h.URL
	}
	return urls
}

func TestEngine_CreateCorpus(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()

	require.NoError(t, eng.CreateCorpus("beta", config.IndexSettings{}))
	require.NoError(t, eng.CreateCorpus("alpha", config.IndexSettings{Scoring: config.ScoringCosine}))
	assert.Equal(t, []string{"alpha", "beta"}, eng.ListCorpora())

	info, err := eng.CorpusInfo("alpha")
	require.NoError(t, err)
	assert.Equal(t, config.ScoringCosine, info.Settings.Scoring)
	assert.Equal(t, config.DefaultSnippetWindow, info.Settings.SnippetWindow)
	assert.False(t, info.Indexed)

	tests := []struct {
		name     string
		corpus   string
		settings config.IndexSettings
		want     error
	}{
		{"duplicate name", "alpha", config.IndexSettings{}, apperrors.ErrCorpusAlreadyExists},
		{"invalid name", "../etc", config.IndexSettings{}, apperrors.ErrInvalidInput},
		{"invalid scoring", "gamma", config.IndexSettings{Scoring: "bm25"}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eng.CreateCorpus(tt.corpus, tt.settings)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateCorpus(%q) error = %v, want %v", tt.corpus, err, tt.want)
			}
		})
	}
}

func TestEngine_AddDocuments(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	require.NoError(t, eng.CreateCorpus("news", config.IndexSettings{}))

	result, err := eng.AddDocuments("news", waterDocs())
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3"}, result.Inserted)
	assert.Empty(t, result.Duplicates)

	docs := append(waterDocs()[:1], model.Document{SourceURL: "d4", Body: "fresh"})
	result, err = eng.AddDocuments("news", docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"d4"}, result.Inserted)
	assert.Equal(t, []string{"d1"}, result.Duplicates)

	// one invalid document rejects the whole batch
	_, err = eng.AddDocuments("news", []model.Document{
		{SourceURL: "d5", Body: "ok"},
		{SourceURL: "d6", Body: "   "},
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	c, err := eng.GetCorpus("news")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	_, err = eng.AddDocuments("missing", waterDocs())
	assert.True(t, errors.Is(err, apperrors.ErrCorpusNotFound))
}

func TestEngine_SearchRequiresIndex(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	require.NoError(t, eng.CreateCorpus("news", config.IndexSettings{}))

	_, err := eng.Search("news", services.SearchQuery{QueryString: "water"})
	assert.True(t, errors.Is(err, apperrors.ErrIndexNotBuilt))

	_, err = eng.Search("missing", services.SearchQuery{QueryString: "water"})
	assert.True(t, errors.Is(err, apperrors.ErrCorpusNotFound))
}

func TestEngine_BuildAndSearch(t *testing.T) {
	eng, _ := newTestEngine(t)
	newWaterCorpus(t, eng, "water")

	result, err := eng.Search("water", services.SearchQuery{QueryString: "water resources"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d3"}, hitURLs(result))
	assert.Equal(t, 2, result.Total)

	info, err := eng.CorpusInfo("water")
	require.NoError(t, err)
	assert.True(t, info.Indexed)
	assert.False(t, info.Stale)
	assert.NotNil(t, info.BuiltAt)

	// documents added after the build make the index stale until the next one
	_, err = eng.AddDocuments("water", []model.Document{{SourceURL: "d4", Body: "water resources abound"}})
	require.NoError(t, err)
	info, _ = eng.CorpusInfo("water")
	assert.True(t, info.Stale)

	result, err = eng.Search("water", services.SearchQuery{QueryString: "water resources"})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)

	require.NoError(t, eng.BuildIndex("water"))
	result, err = eng.Search("water", services.SearchQuery{QueryString: "water resources"})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 3)
}

func TestEngine_CorpusStats(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	require.NoError(t, eng.CreateCorpus("water", config.IndexSettings{}))
	_, err := eng.AddDocuments("water", waterDocs())
	require.NoError(t, err)

	stats, err := eng.CorpusStats("water", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 2, stats.Authors)
	require.Len(t, stats.TopWords, 1)
	assert.Equal(t, "water", stats.TopWords[0].Word)
	assert.Empty(t, stats.TopTerms, "no terms before the first build")

	require.NoError(t, eng.BuildIndex("water"))
	stats, err = eng.CorpusStats("water", 1)
	require.NoError(t, err)
	require.Len(t, stats.TopTerms, 1)
	assert.Equal(t, "water", stats.TopTerms[0].Term)
	assert.Equal(t, 3, stats.TopTerms[0].DocFreq)
}

func TestEngine_PersistAndReload(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T, dir string) store.SnapshotStore
	}{
		{"gob files", newGobStore},
		{"sqlite", func(t *testing.T, dir string) store.SnapshotStore {
			s, err := store.NewSQLiteStore(dir, nil)
			require.NoError(t, err)
			return s
		}},
		{"badger", func(t *testing.T, dir string) store.SnapshotStore {
			s, err := store.OpenBadgerStore(dir, false, nil)
			require.NoError(t, err)
			return s
		}},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			settings := config.IndexSettings{Scoring: config.ScoringCosine, SnippetWindow: 2}

			first := NewEngine(b.open(t, dir), config.DefaultIndexSettings())
			require.NoError(t, first.CreateCorpus("water", settings))
			_, err := first.AddDocuments("water", waterDocs())
			require.NoError(t, err)
			require.NoError(t, first.BuildIndex("water"))
			want, err := first.Search("water", services.SearchQuery{QueryString: "water resources"})
			require.NoError(t, err)
			require.NoError(t, first.Close())

			second := NewEngine(b.open(t, dir), config.DefaultIndexSettings())
			defer second.Close()

			assert.Equal(t, []string{"water"}, second.ListCorpora())
			info, err := second.CorpusInfo("water")
			require.NoError(t, err)
			assert.True(t, info.Indexed)
			assert.Equal(t, 3, info.Documents)
			assert.Equal(t, config.ScoringCosine, info.Settings.Scoring)
			assert.Equal(t, 2, info.Settings.SnippetWindow)

			got, err := second.Search("water", services.SearchQuery{QueryString: "water resources"})
			require.NoError(t, err)
			assert.Equal(t, hitURLs(want), hitURLs(got))
			for i := range want.Hits {
				assert.InDelta(t, want.Hits[i].Score, got.Hits[i].Score, 1e-12)
				assert.Equal(t, want.Hits[i].Snippet, got.Hits[i].Snippet)
			}
		})
	}
}

func TestEngine_PersistLeavesOutUnindexedDocuments(t *testing.T) {
	eng, dir := newTestEngine(t)
	newWaterCorpus(t, eng, "water")

	// a stale corpus is rebuilt before it is persisted
	_, err := eng.AddDocuments("water", []model.Document{{SourceURL: "d4", Body: "rain"}})
	require.NoError(t, err)
	require.NoError(t, eng.PersistCorpus("water"))

	reloaded := NewEngine(newGobStore(t, dir), config.DefaultIndexSettings())
	defer reloaded.Close()
	info, err := reloaded.CorpusInfo("water")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Documents)
	assert.False(t, info.Stale)
}

func TestEngine_SkipsIncompleteSnapshot(t *testing.T) {
	eng, dir := newTestEngine(t)
	newWaterCorpus(t, eng, "water")
	newWaterCorpus(t, eng, "rivers")
	require.NoError(t, os.Remove(filepath.Join(dir, "water", store.PartTFIDF+".gob")))

	reloaded := NewEngine(newGobStore(t, dir), config.DefaultIndexSettings())
	defer reloaded.Close()
	assert.Equal(t, []string{"rivers"}, reloaded.ListCorpora())

	err := reloaded.LoadCorpus(context.Background(), "water")
	assert.True(t, errors.Is(err, apperrors.ErrIncompleteSnapshot))
}

func TestEngine_DeleteCorpus(t *testing.T) {
	eng, dir := newTestEngine(t)
	newWaterCorpus(t, eng, "water")
	require.DirExists(t, filepath.Join(dir, "water"))

	require.NoError(t, eng.DeleteCorpus("water"))
	assert.Empty(t, eng.ListCorpora())
	assert.NoDirExists(t, filepath.Join(dir, "water"))

	err := eng.DeleteCorpus("water")
	assert.True(t, errors.Is(err, apperrors.ErrCorpusNotFound))

	// never persisted corpora are deleted from memory only
	require.NoError(t, eng.CreateCorpus("draft", config.IndexSettings{}))
	assert.NoError(t, eng.DeleteCorpus("draft"))
}

func TestEngine_PersistWithoutStore(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	newWaterCorpus(t, eng, "water")

	assert.Error(t, eng.PersistCorpus("water"))
	assert.Error(t, eng.LoadCorpus(context.Background(), "water"))
}

func TestEngine_MultiSearch(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	newWaterCorpus(t, eng, "water")
	newWaterCorpus(t, eng, "rivers")
	require.NoError(t, eng.CreateCorpus("empty", config.IndexSettings{}))

	result, err := eng.MultiSearch(context.Background(), services.MultiSearchQuery{
		Corpora: []string{"water", "rivers", "empty", "missing", "water"},
		Query:   services.SearchQuery{QueryString: "water quality"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalQueries, "duplicate names run once")
	require.Len(t, result.Results, 2)
	assert.Equal(t, []string{"d2"}, hitURLs(result.Results["water"]))
	assert.Equal(t, []string{"d2"}, hitURLs(result.Results["rivers"]))
	assert.Contains(t, result.Errors, "empty")
	assert.Contains(t, result.Errors, "missing")

	_, err = eng.MultiSearch(context.Background(), services.MultiSearchQuery{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestEngine_Themes(t *testing.T) {
	eng := NewEngine(nil, config.DefaultIndexSettings())
	defer eng.Close()
	require.NoError(t, eng.CreateCorpus("mixed", config.IndexSettings{}))
	_, err := eng.AddDocuments("mixed", []model.Document{
		{SourceURL: "h", Body: "The hospital needs a doctor"},
		{SourceURL: "s", Body: "Every school needs a teacher"},
	})
	require.NoError(t, err)

	_, err = eng.Themes("mixed")
	assert.True(t, errors.Is(err, apperrors.ErrIndexNotBuilt))

	require.NoError(t, eng.BuildIndex("mixed"))
	classified, err := eng.Themes("mixed")
	require.NoError(t, err)
	require.Len(t, classified, 2)
	assert.Equal(t, "health", classified[0].Themes[0].Theme)
	assert.Equal(t, "education", classified[1].Themes[0].Theme)

	groups, err := eng.ThemeGroups("mixed")
	require.NoError(t, err)
	assert.Len(t, groups["health"], 1)
	assert.Equal(t, "s", groups["education"][0].URL)
}

func TestEngine_UpdateCorpusSettings(t *testing.T) {
	eng, _ := newTestEngine(t)
	newWaterCorpus(t, eng, "water")

	require.NoError(t, eng.UpdateCorpusSettings("water", config.IndexSettings{Stemming: true}))
	info, err := eng.CorpusInfo("water")
	require.NoError(t, err)
	assert.True(t, info.Settings.Stemming)
	assert.True(t, info.Indexed, "an indexed corpus is rebuilt")

	// "resource" only matches "resources" once stemming is on
	result, err := eng.Search("water", services.SearchQuery{QueryString: "resource"})
	require.NoError(t, err)
	assert.Empty(t, result.Unknown)

	err = eng.UpdateCorpusSettings("water", config.IndexSettings{Scoring: "bm25"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	err = eng.UpdateCorpusSettings("missing", config.IndexSettings{})
	assert.True(t, errors.Is(err, apperrors.ErrCorpusNotFound))
}
