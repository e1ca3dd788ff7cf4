package engine

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// Search runs query against the published index of a corpus.
func (e *Engine) Search(name string, query services.SearchQuery) (services.SearchResult, error) {
	inst, err := e.instance(name)
	if err != nil {
		return services.SearchResult{}, err
	}
	return inst.search.Search(query)
}

type corpusResult struct {
	name   string
	result services.SearchResult
	err    error
}

// MultiSearch runs one query against several corpora in parallel.
// A corpus that fails is reported in Errors without failing the others.
func (e *Engine) MultiSearch(ctx context.Context, query services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	startTime := time.Now()
	if len(query.Corpora) == 0 {
		return nil, apperrors.NewValidationError("corpora", "at least one corpus is required")
	}

	names := make([]string, 0, len(query.Corpora))
	seen := make(map[string]bool, len(query.Corpora))
	for _, name := range query.Corpora {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	results := make(chan corpusResult, len(names))
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			result, err := e.Search(name, query.Query)
			results <- corpusResult{name: name, result: result, err: err}
		}(name)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	out := &services.MultiSearchResult{
		Results:      make(map[string]services.SearchResult, len(names)),
		Errors:       make(map[string]string),
		TotalQueries: len(names),
	}
	for {
		select {
		case r, ok := <-results:
			if !ok {
				out.ProcessingTimeMs = float64(time.Since(startTime).Microseconds()) / 1000
				return out, nil
			}
			if r.err != nil {
				out.Errors[r.name] = r.err.Error()
				continue
			}
			out.Results[r.name] = r.result
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
