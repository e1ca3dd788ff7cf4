package engine

import (
	"sync"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/corpus"
	"github.com/Linattendu/projet-moteur-recherche/internal/search"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// corpusInstance pairs the documents of one corpus with the service that
// searches their last published index. Instances are replaced, never
// mutated, when settings change.
type corpusInstance struct {
	corpus *corpus.Corpus
	search *search.Service

	// buildMu serializes publish and persist so the store keeps the
	// snapshot that was published last.
	buildMu sync.Mutex
}

func (e *Engine) newInstance(c *corpus.Corpus, settings config.IndexSettings) *corpusInstance {
	return &corpusInstance{
		corpus: c,
		search: search.NewService(c.Name(), settings, search.WithLogger(e.logger)),
	}
}

// stale reports whether the corpus holds documents the index has not seen.
func (i *corpusInstance) stale() bool {
	ti := i.search.Index()
	return ti == nil || ti.NumDocs() != i.corpus.Len()
}

func (i *corpusInstance) info() services.CorpusInfo {
	info := services.CorpusInfo{
		Name:      i.corpus.Name(),
		Documents: i.corpus.Len(),
		Authors:   len(i.corpus.Authors()),
		Settings:  i.search.Settings(),
	}
	if ti := i.search.Index(); ti != nil {
		info.Indexed = true
		info.Terms = ti.Vocabulary().Len()
		info.Stale = ti.NumDocs() != info.Documents
		if builtAt, ok := i.search.BuiltAt(); ok {
			info.BuiltAt = &builtAt
		}
	}
	return info
}
