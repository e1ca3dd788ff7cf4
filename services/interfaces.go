package services

import (
	"context"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/corpus"
	"github.com/Linattendu/projet-moteur-recherche/index"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// SearchQuery is a keyword query with optional author and date filters.
type SearchQuery struct {
	QueryString string     `json:"query"`
	Limit       int        `json:"limit,omitempty"`     // 0 uses the corpus default
	Author      string     `json:"author,omitempty"`    // Exact author match when set
	DateFrom    *time.Time `json:"date_from,omitempty"` // Inclusive lower bound
	DateTo      *time.Time `json:"date_to,omitempty"`   // Inclusive upper bound
}

// Hit is one ranked result row.
type Hit struct {
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
	Snippet     string    `json:"snippet"`
	Score       float64   `json:"score"`
}

// SearchResult is the ranked answer to a SearchQuery.
// Hits is never nil; an empty slice means nothing matched.
type SearchResult struct {
	Hits        []Hit               `json:"hits"`
	Total       int                 `json:"total"`                 // Matches before truncation
	Unknown     []string            `json:"unknown,omitempty"`     // Query terms absent from the vocabulary
	Suggestions map[string][]string `json:"suggestions,omitempty"` // Close vocabulary terms per unknown term
	Took        int64               `json:"took"`                  // milliseconds
	QueryId     string              `json:"query_id"`              // unique UUID for this search query
}

// MultiSearchQuery runs one query against several corpora.
type MultiSearchQuery struct {
	Corpora []string    `json:"corpora"`
	Query   SearchQuery `json:"query"`
}

// MultiSearchResult holds per-corpus results of a MultiSearchQuery.
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	Errors           map[string]string       `json:"errors,omitempty"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// AddResult reports the outcome of a batch insert.
type AddResult struct {
	Inserted   []string `json:"inserted"`
	Duplicates []string `json:"duplicates"`
}

// CorpusInfo summarizes one corpus.
type CorpusInfo struct {
	Name      string               `json:"name"`
	Documents int                  `json:"documents"`
	Authors   int                  `json:"authors"`
	Terms     int                  `json:"terms"`
	Indexed   bool                 `json:"indexed"`
	Stale     bool                 `json:"stale"`              // Documents were added after the last build
	BuiltAt   *time.Time           `json:"built_at,omitempty"` // When the current index was published
	Settings  config.IndexSettings `json:"settings"`
}

// CorpusStats extends CorpusInfo with word and term statistics.
type CorpusStats struct {
	CorpusInfo
	TopWords []corpus.WordCount `json:"top_words"`
	TopTerms []index.TermStats  `json:"top_terms"`
}

// ThemeScore is the weight of one theme in one document.
type ThemeScore struct {
	Theme string  `json:"theme"`
	Score float64 `json:"score"`
}

// DocumentThemes lists the themes detected in one document, strongest first.
type DocumentThemes struct {
	URL    string       `json:"url"`
	Title  string       `json:"title"`
	Themes []ThemeScore `json:"themes"`
}

// Searcher answers keyword queries over one indexed corpus.
type Searcher interface {
	Search(query SearchQuery) (SearchResult, error)
}

// CorpusManager manages the lifecycle of named corpora.
type CorpusManager interface {
	CreateCorpus(name string, settings config.IndexSettings) error
	UpdateCorpusSettings(name string, settings config.IndexSettings) error
	GetCorpus(name string) (*corpus.Corpus, error)
	CorpusInfo(name string) (CorpusInfo, error)
	CorpusStats(name string, n int) (CorpusStats, error)
	DeleteCorpus(name string) error
	ListCorpora() []string
	AddDocuments(name string, docs []model.Document) (AddResult, error)
	BuildIndex(name string) error
	Search(name string, query SearchQuery) (SearchResult, error)
	MultiSearch(ctx context.Context, query MultiSearchQuery) (*MultiSearchResult, error)
	Themes(name string) ([]DocumentThemes, error)
	PersistCorpus(name string) error
}

// AsyncCorpusManager adds background jobs. Each method returns the job ID.
type AsyncCorpusManager interface {
	CorpusManager
	BuildIndexAsync(name string) (string, error)
	AddDocumentsAsync(name string, docs []model.Document, build bool) (string, error)
	PersistCorpusAsync(name string) (string, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(corpusName string, status *model.JobStatus) []*model.Job
}
