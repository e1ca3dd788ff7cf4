package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/index"
	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/tokenizer"
	"github.com/Linattendu/projet-moteur-recherche/internal/typoutil"
	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// Service answers keyword queries for a single corpus.
// It fulfills the services.Searcher interface.
//
// The service starts without an index and refuses queries until Rebuild or
// Install publishes one. Publishing swaps an immutable snapshot atomically,
// so in-flight searches finish against the snapshot they started with.
type Service struct {
	name      string
	settings  config.IndexSettings
	current   atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
	logger    *slog.Logger
}

// maxSuggestions caps the alternatives offered per unknown query term.
const maxSuggestions = 3

// snapshot pairs an index with lazily computed scoring data.
type snapshot struct {
	index     *index.TermIndex
	builtAt   time.Time
	normsOnce sync.Once
	norms     []float64

	suggestOnce sync.Once
	suggester   *typoutil.Suggester
}

func (s *snapshot) rowNorms() []float64 {
	s.normsOnce.Do(func() {
		s.norms = s.index.TFIDF().RowNorms()
	})
	return s.norms
}

func (s *snapshot) suggestions(logger *slog.Logger) *typoutil.Suggester {
	s.suggestOnce.Do(func() {
		terms := s.index.Vocabulary().Terms()
		candidates := make([]typoutil.Candidate, len(terms))
		for i, t := range terms {
			candidates[i] = typoutil.Candidate{Term: t.Term, Weight: t.DocFreq}
		}
		s.suggester = typoutil.NewSuggester(candidates, logger)
	})
	return s.suggester
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewService creates a search Service for the named corpus.
func NewService(name string, settings config.IndexSettings, opts ...Option) *Service {
	settings.ApplyDefaults()
	s := &Service{
		name:     name,
		settings: settings,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("corpus", name)
	return s
}

// Settings returns the settings the service was created with.
func (s *Service) Settings() config.IndexSettings {
	return s.settings
}

// BuildOptions returns the index options matching the service settings.
func (s *Service) BuildOptions() []index.Option {
	return []index.Option{
		index.WithAnalyzer(tokenizer.Analyzer{Stem: s.settings.Stemming}),
		index.WithWorkers(s.settings.BuildWorkers),
		index.WithLogger(s.logger),
	}
}

// Rebuild indexes docs and publishes the result.
// docs must not be modified afterwards.
func (s *Service) Rebuild(docs []model.Document) (*index.TermIndex, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	ti, err := index.Build(docs, s.BuildOptions()...)
	if err != nil {
		return nil, fmt.Errorf("building index for corpus '%s': %w", s.name, err)
	}
	s.current.Store(&snapshot{index: ti, builtAt: time.Now()})
	s.logger.Info("index published", "documents", ti.NumDocs(), "terms", ti.Vocabulary().Len())
	return ti, nil
}

// Install publishes an index built or restored elsewhere.
func (s *Service) Install(ti *index.TermIndex) {
	s.current.Store(&snapshot{index: ti, builtAt: time.Now()})
}

// Index returns the published index, or nil before the first build.
func (s *Service) Index() *index.TermIndex {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.index
}

// Ready reports whether an index has been published.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// BuiltAt returns when the current index was published.
func (s *Service) BuiltAt() (time.Time, bool) {
	snap := s.current.Load()
	if snap == nil {
		return time.Time{}, false
	}
	return snap.builtAt, true
}

// repair rebuilds from the documents of a broken snapshot unless another
// caller already replaced it.
func (s *Service) repair(broken *snapshot) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if s.current.Load() != broken {
		return nil
	}
	ti, err := index.Build(broken.index.Documents(), s.BuildOptions()...)
	if err != nil {
		return err
	}
	s.current.Store(&snapshot{index: ti, builtAt: time.Now()})
	s.logger.Info("index rebuilt after shape mismatch", "terms", ti.Vocabulary().Len())
	return nil
}

// candidate is a document that survived filtering.
type candidate struct {
	ordinal int
	score   float64
}

// Search ranks the documents of the published index against query.
//
// A query containing any term unknown to the vocabulary matches nothing.
// A document is kept only when it contains the query as a phrase, scores
// above zero and passes the author and date filters. Hits are ordered by
// score descending with ties in corpus order.
func (s *Service) Search(query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	snap := s.current.Load()
	if snap == nil {
		return services.SearchResult{}, errors.NewIndexNotBuiltError(s.name)
	}
	ti := snap.index

	if err := ti.Coherent(); err != nil {
		s.logger.Warn("index shape mismatch, rebuilding", "error", err)
		if repairErr := s.repair(snap); repairErr != nil {
			return services.SearchResult{}, fmt.Errorf("search on corpus '%s': %w (rebuild failed: %v)", s.name, err, repairErr)
		}
		return services.SearchResult{}, fmt.Errorf("search on corpus '%s': %w", s.name, err)
	}

	result := services.SearchResult{
		Hits:    make([]services.Hit, 0),
		QueryId: uuid.New().String(),
	}
	finish := func() services.SearchResult {
		result.Took = time.Since(startTime).Milliseconds()
		return result
	}

	phrase := strings.TrimSpace(query.QueryString)
	tokens := ti.Tokens(phrase)
	if len(tokens) == 0 {
		return finish(), nil
	}

	// 1. Unknown-term policy
	for _, token := range tokens {
		if _, ok := ti.Vocabulary().ID(token); !ok {
			result.Unknown = append(result.Unknown, token)
		}
	}
	if len(result.Unknown) > 0 {
		suggester := snap.suggestions(s.logger)
		for _, token := range result.Unknown {
			if alts := suggester.Suggest(token, maxSuggestions); len(alts) > 0 {
				if result.Suggestions == nil {
					result.Suggestions = make(map[string][]string)
				}
				result.Suggestions[token] = alts
			}
		}
		s.logger.Debug("query has terms outside the vocabulary", "query", phrase, "unknown", result.Unknown)
		return finish(), nil
	}

	// 2-3. Vectorize and score
	qv := ti.Vectorize(phrase)
	scores, err := s.score(snap, qv)
	if err != nil {
		return services.SearchResult{}, fmt.Errorf("search on corpus '%s': %w", s.name, err)
	}

	// 4. Filter
	f := newFilter(phrase, query)
	docs := ti.Documents()
	candidates := make([]candidate, 0)
	for ordinal, score := range scores {
		if f.keep(docs[ordinal], score) {
			candidates = append(candidates, candidate{ordinal: ordinal, score: score})
		}
	}

	// 5. Rank
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	result.Total = len(candidates)

	// 6. Truncate and decorate
	limit := query.Limit
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}
	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	for _, c := range candidates {
		doc := docs[c.ordinal]
		result.Hits = append(result.Hits, services.Hit{
			Title:       doc.Title,
			Author:      doc.Author,
			PublishedAt: doc.PublishedAt,
			URL:         doc.SourceURL,
			Snippet:     f.phrase.snippet(doc.Body, s.settings.SnippetWindow),
			Score:       c.score,
		})
	}

	return finish(), nil
}
