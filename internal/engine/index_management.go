package engine

import (
	"context"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/index"
	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/themes"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// progressFunc reports build steps to a background job.
type progressFunc func(step, total int, message string)

// BuildIndex indexes the documents currently in the corpus, publishes the
// result and persists it.
func (e *Engine) BuildIndex(name string) error {
	return e.buildIndex(context.Background(), name, nil)
}

func (e *Engine) buildIndex(ctx context.Context, name string, progress progressFunc) error {
	if progress == nil {
		progress = func(int, int, string) {}
	}
	inst, err := e.instance(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	inst.buildMu.Lock()
	defer inst.buildMu.Unlock()

	docs := inst.corpus.Documents()
	progress(0, 2, "building index")
	ti, err := inst.search.Rebuild(docs)
	if err != nil {
		return err
	}

	progress(1, 2, "persisting snapshot")
	if err := e.persist(ctx, inst, ti); err != nil {
		return err
	}
	progress(2, 2, "index built")
	return nil
}

// UpdateCorpusSettings replaces the settings of a corpus. An indexed corpus
// is rebuilt with the new settings before the change is published, so
// searches keep using the previous index until then and a failed rebuild
// leaves the corpus as it was.
func (e *Engine) UpdateCorpusSettings(name string, settings config.IndexSettings) error {
	settings, err := e.resolveSettings(settings)
	if err != nil {
		return err
	}

	e.settingsMu.Lock()
	defer e.settingsMu.Unlock()

	old, err := e.instance(name)
	if err != nil {
		return err
	}
	old.buildMu.Lock()
	defer old.buildMu.Unlock()
	next := e.newInstance(old.corpus, settings)
	next.buildMu.Lock()
	defer next.buildMu.Unlock()

	var ti *index.TermIndex
	if old.search.Ready() {
		ti, err = next.search.Rebuild(old.corpus.Documents())
		if err != nil {
			return err
		}
	}

	e.mu.Lock()
	if e.corpora[name] != old {
		e.mu.Unlock()
		return apperrors.NewCorpusNotFoundError(name)
	}
	e.corpora[name] = next
	e.mu.Unlock()

	e.logger.Info("corpus settings updated", "corpus", name, "scoring", settings.Scoring, "stemming", settings.Stemming)
	if ti == nil {
		return nil
	}
	return e.persist(context.Background(), next, ti)
}

// indexOf returns the published index of a corpus.
func (e *Engine) indexOf(name string) (*index.TermIndex, error) {
	inst, err := e.instance(name)
	if err != nil {
		return nil, err
	}
	ti := inst.search.Index()
	if ti == nil {
		return nil, apperrors.NewIndexNotBuiltError(name)
	}
	return ti, nil
}

// Themes scores every indexed document of a corpus against the known themes.
func (e *Engine) Themes(name string) ([]services.DocumentThemes, error) {
	ti, err := e.indexOf(name)
	if err != nil {
		return nil, err
	}
	return themes.Classify(ti), nil
}

// ThemeGroups groups the indexed documents of a corpus by theme.
func (e *Engine) ThemeGroups(name string) (map[string][]themes.Member, error) {
	classified, err := e.Themes(name)
	if err != nil {
		return nil, err
	}
	return themes.SubCorpora(classified), nil
}
