package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"One. Two.", []string{"One. ", "Two"}},
		{"No period", []string{"No period"}},
		{"Version 2.5 shipped. Done", []string{"Version 2", "5 shipped. ", "Done"}},
		{"Line one.\nLine two", []string{"Line one.\n", "Line two"}},
	}
	for _, tt := range tests {
		got := SplitSentences(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitSentences(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestReadSpeechCSV(t *testing.T) {
	long := words(21, "freedom")
	short := words(20, "short")
	input := "speaker\ttext\tdate\tdescr\tlink\n" +
		"CLINTON\t" + long + ". " + short + ". " + long + ".\tApril 18, 2016\tRally in Albany\thttp://speech/1\n" +
		"TRUMP\t" + long + "\tnot a date\tBroken\thttp://speech/2\n"

	docs, err := ReadSpeechCSV(strings.NewReader(input), SpeechOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2, "short sentences and rows with bad dates are dropped")

	first := docs[0]
	assert.Equal(t, "CLINTON", first.Author)
	assert.Equal(t, "Rally in Albany", first.Title)
	assert.Equal(t, time.Date(2016, 4, 18, 0, 0, 0, 0, time.UTC), first.PublishedAt)
	assert.Equal(t, model.OriginCSV, first.Origin)
	assert.Equal(t, long+".", first.Body)
	assert.Equal(t, "http://speech/1#s0", first.SourceURL)
	assert.Equal(t, "http://speech/1#s2", docs[1].SourceURL)
}

func TestReadSpeechCSVMinWords(t *testing.T) {
	input := "speaker\ttext\tdate\tdescr\tlink\n" +
		"A\tfour words right here\tMay 1, 2020\td\thttp://x\n"

	docs, err := ReadSpeechCSV(strings.NewReader(input), SpeechOptions{MinWords: 3})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestReadSpeechCSVMissingColumn(t *testing.T) {
	_, err := ReadSpeechCSV(strings.NewReader("speaker\ttext\tdate\n"), SpeechOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestReadSpeechCSVEmpty(t *testing.T) {
	docs, err := ReadSpeechCSV(strings.NewReader(""), SpeechOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReadJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		docs, err := ReadJSON(strings.NewReader(`[
			{"title": "a", "source_url": "http://a", "body": "alpha", "published_at": "2024-01-02T00:00:00Z"},
			{"title": "b", "source_url": "http://b", "body": "beta", "origin": "reddit", "extra": {"comment_count": 4}}
		]`))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "http://a", docs[0].SourceURL)
		assert.Equal(t, 2024, docs[0].PublishedAt.Year())
		assert.Equal(t, model.OriginReddit, docs[1].Origin)
		assert.Equal(t, 4, docs[1].Extra.CommentCount)
	})

	t.Run("single object", func(t *testing.T) {
		docs, err := ReadJSON(strings.NewReader(`{"source_url": "http://a", "body": "alpha"}`))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "alpha", docs[0].Body)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ReadJSON(strings.NewReader(`[{"body": `))
		assert.Error(t, err)
	})
}
