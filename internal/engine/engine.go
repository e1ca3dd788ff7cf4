package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/corpus"
	"github.com/Linattendu/projet-moteur-recherche/index"
	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/jobs"
	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

// Engine manages multiple named corpora and their indexes.
// It implements the services.AsyncCorpusManager interface.
type Engine struct {
	mu         sync.RWMutex
	corpora    map[string]*corpusInstance
	settingsMu sync.Mutex // serializes settings updates
	store      store.SnapshotStore // nil keeps everything in memory
	jobManager *jobs.Manager
	defaults   config.IndexSettings
	jobWorkers int
	logger     *slog.Logger
}

var (
	_ services.AsyncCorpusManager = (*Engine)(nil)
	_ services.JobManager         = (*Engine)(nil)
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithJobWorkers sets how many background jobs may run at once.
// Default is 2.
func WithJobWorkers(n int) Option {
	return func(e *Engine) {
		e.jobWorkers = n
	}
}

// NewEngine creates an engine backed by snapshots and loads every corpus
// stored there. defaults apply to corpora created without settings.
// A nil store keeps every corpus in memory only.
func NewEngine(snapshots store.SnapshotStore, defaults config.IndexSettings, opts ...Option) *Engine {
	defaults.ApplyDefaults()
	e := &Engine{
		corpora:    make(map[string]*corpusInstance),
		store:      snapshots,
		defaults:   defaults,
		jobWorkers: 2,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.jobManager = jobs.NewManager(e.jobWorkers, jobs.WithLogger(e.logger))
	e.jobManager.Start()
	e.loadCorpora(context.Background())
	return e
}

// Close stops background jobs and closes the snapshot store.
func (e *Engine) Close() error {
	e.jobManager.Stop()
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// resolveSettings fills unset fields and rejects invalid values.
// The zero value selects the engine defaults.
func (e *Engine) resolveSettings(settings config.IndexSettings) (config.IndexSettings, error) {
	if settings == (config.IndexSettings{}) {
		return e.defaults, nil
	}
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return config.IndexSettings{}, apperrors.NewValidationError("settings", strings.Join(problems, "; "))
	}
	return settings, nil
}

// CreateCorpus registers an empty corpus. It becomes durable on its first
// build or persist.
func (e *Engine) CreateCorpus(name string, settings config.IndexSettings) error {
	if !store.ValidName(name) {
		return apperrors.NewValidationError("name", fmt.Sprintf("invalid corpus name '%s'", name))
	}
	settings, err := e.resolveSettings(settings)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.corpora[name]; exists {
		return apperrors.NewCorpusAlreadyExistsError(name)
	}
	e.corpora[name] = e.newInstance(corpus.New(name), settings)
	e.logger.Info("corpus created", "corpus", name, "scoring", settings.Scoring, "stemming", settings.Stemming)
	return nil
}

func (e *Engine) instance(name string) (*corpusInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst, exists := e.corpora[name]
	if !exists {
		return nil, apperrors.NewCorpusNotFoundError(name)
	}
	return inst, nil
}

// GetCorpus returns the live corpus registered under name.
func (e *Engine) GetCorpus(name string) (*corpus.Corpus, error) {
	inst, err := e.instance(name)
	if err != nil {
		return nil, err
	}
	return inst.corpus, nil
}

// CorpusInfo summarizes the corpus registered under name.
func (e *Engine) CorpusInfo(name string) (services.CorpusInfo, error) {
	inst, err := e.instance(name)
	if err != nil {
		return services.CorpusInfo{}, err
	}
	return inst.info(), nil
}

// CorpusStats adds the n most frequent words and terms to CorpusInfo.
// Terms are empty until the corpus is indexed.
func (e *Engine) CorpusStats(name string, n int) (services.CorpusStats, error) {
	inst, err := e.instance(name)
	if err != nil {
		return services.CorpusStats{}, err
	}
	stats := services.CorpusStats{
		CorpusInfo: inst.info(),
		TopWords:   inst.corpus.WordStats(n),
		TopTerms:   []index.TermStats{},
	}
	if ti := inst.search.Index(); ti != nil {
		stats.TopTerms = ti.TopTerms(n)
	}
	return stats, nil
}

// DeleteCorpus removes a corpus from memory and from the snapshot store.
func (e *Engine) DeleteCorpus(name string) error {
	e.mu.Lock()
	if _, exists := e.corpora[name]; !exists {
		e.mu.Unlock()
		return apperrors.NewCorpusNotFoundError(name)
	}
	delete(e.corpora, name)
	e.mu.Unlock()

	if e.store != nil {
		err := e.store.Delete(context.Background(), name)
		if err != nil && !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return fmt.Errorf("deleting stored corpus '%s': %w", name, err)
		}
	}
	e.logger.Info("corpus deleted", "corpus", name)
	return nil
}

// ListCorpora returns the registered corpus names in alphabetical order.
func (e *Engine) ListCorpora() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.corpora))
	for name := range e.corpora {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddDocuments inserts docs in order. Documents whose source URL is already
// present are skipped and reported as duplicates. The batch is rejected
// before any insert when one document is invalid.
// The index is not updated; call BuildIndex afterwards.
func (e *Engine) AddDocuments(name string, docs []model.Document) (services.AddResult, error) {
	inst, err := e.instance(name)
	if err != nil {
		return services.AddResult{}, err
	}
	for i, doc := range docs {
		if field, message := doc.Validate(); field != "" {
			return services.AddResult{}, apperrors.NewValidationError(fmt.Sprintf("documents[%d].%s", i, field), message)
		}
	}

	result := services.AddResult{
		Inserted:   make([]string, 0, len(docs)),
		Duplicates: make([]string, 0),
	}
	for _, doc := range docs {
		id, err := inst.corpus.Insert(doc)
		if errors.Is(err, apperrors.ErrDuplicateDocument) {
			result.Duplicates = append(result.Duplicates, doc.ID())
			continue
		}
		if err != nil {
			return result, err
		}
		result.Inserted = append(result.Inserted, id)
	}
	e.logger.Info("documents added", "corpus", name, "inserted", len(result.Inserted), "duplicates", len(result.Duplicates))
	return result, nil
}

// GetJob returns the background job with the given ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the jobs of a corpus, newest first.
func (e *Engine) ListJobs(corpusName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(corpusName, status)
}

// JobMetrics returns background job counters.
func (e *Engine) JobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}
