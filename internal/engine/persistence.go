package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/corpus"
	"github.com/Linattendu/projet-moteur-recherche/index"
	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

// loadCorpora restores every corpus found in the snapshot store.
// A corpus that cannot be restored is logged and skipped.
func (e *Engine) loadCorpora(ctx context.Context) {
	if e.store == nil {
		return
	}
	names, err := e.store.List(ctx)
	if err != nil {
		e.logger.Warn("listing stored corpora failed, starting empty", "error", err)
		return
	}

	for _, name := range names {
		if err := e.LoadCorpus(ctx, name); err != nil {
			e.logger.Warn("skipping stored corpus", "corpus", name, "error", err)
			continue
		}
	}
	e.logger.Info("stored corpora loaded", "count", len(e.ListCorpora()))
}

// LoadCorpus replaces the in-memory corpus name with its stored snapshot.
// A snapshot missing any part is refused.
func (e *Engine) LoadCorpus(ctx context.Context, name string) error {
	if e.store == nil {
		return fmt.Errorf("cannot load corpus '%s': no snapshot store configured", name)
	}
	snap, err := e.store.Load(ctx, name)
	if err != nil {
		return err
	}
	inst, err := e.restore(snap)
	if err != nil {
		return fmt.Errorf("restoring corpus '%s': %w", name, err)
	}

	e.mu.Lock()
	e.corpora[name] = inst
	e.mu.Unlock()

	ti := inst.search.Index()
	e.logger.Info("corpus loaded", "corpus", name, "documents", ti.NumDocs(), "terms", ti.Vocabulary().Len())
	return nil
}

// restore decodes the blobs of snap and publishes the stored index without
// recomputing it, unless its matrices disagree with the vocabulary.
func (e *Engine) restore(snap store.Snapshot) (*corpusInstance, error) {
	c, err := corpus.Decode(snap.Corpus)
	if err != nil {
		return nil, fmt.Errorf("decoding corpus: %w", err)
	}
	if c.Name() != snap.Name {
		return nil, fmt.Errorf("stored corpus is named '%s'", c.Name())
	}
	vocab, err := index.DecodeVocabulary(snap.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}
	tf, err := index.DecodeMatrix(snap.TF)
	if err != nil {
		return nil, fmt.Errorf("decoding tf matrix: %w", err)
	}
	tfidf, err := index.DecodeMatrix(snap.TFIDF)
	if err != nil {
		return nil, fmt.Errorf("decoding tf-idf matrix: %w", err)
	}

	settings := e.defaults
	if len(snap.Settings) > 0 {
		if err := json.Unmarshal(snap.Settings, &settings); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
		settings.ApplyDefaults()
	}

	inst := e.newInstance(c, settings)
	ti, err := index.Restore(c.Documents(), vocab, tf, tfidf, inst.search.BuildOptions()...)
	if err != nil {
		return nil, err
	}
	if err := ti.Coherent(); err != nil {
		e.logger.Warn("stored index does not match its vocabulary, recomputing", "corpus", snap.Name, "error", err)
		if ti, err = ti.Recompute(); err != nil {
			return nil, err
		}
	}
	inst.search.Install(ti)
	return inst, nil
}

// PersistCorpus saves the corpus and its index. A corpus that was never
// indexed, or that gained documents since, is rebuilt first.
func (e *Engine) PersistCorpus(name string) error {
	inst, err := e.instance(name)
	if err != nil {
		return err
	}
	if e.store == nil {
		return fmt.Errorf("cannot persist corpus '%s': no snapshot store configured", name)
	}
	if inst.stale() {
		return e.BuildIndex(name)
	}
	inst.buildMu.Lock()
	defer inst.buildMu.Unlock()
	return e.persist(context.Background(), inst, inst.search.Index())
}

// persist writes the documents of ti, its vocabulary, both matrices and
// the corpus settings as one snapshot. Documents inserted after ti was
// built are left out so that the stored parts always agree. Nothing is
// written unless inst is still the registered instance of its corpus.
func (e *Engine) persist(ctx context.Context, inst *corpusInstance, ti *index.TermIndex) error {
	if e.store == nil {
		return nil
	}
	name := inst.corpus.Name()

	indexed, err := corpus.FromDocuments(name, ti.Documents())
	if err != nil {
		return fmt.Errorf("collecting documents of '%s': %w", name, err)
	}
	corpusBlob, err := corpus.Encode(indexed)
	if err != nil {
		return fmt.Errorf("encoding corpus '%s': %w", name, err)
	}
	vocabBlob, err := index.EncodeVocabulary(ti.Vocabulary())
	if err != nil {
		return fmt.Errorf("encoding vocabulary of '%s': %w", name, err)
	}
	tfBlob, err := index.EncodeMatrix(ti.TF())
	if err != nil {
		return fmt.Errorf("encoding tf matrix of '%s': %w", name, err)
	}
	tfidfBlob, err := index.EncodeMatrix(ti.TFIDF())
	if err != nil {
		return fmt.Errorf("encoding tf-idf matrix of '%s': %w", name, err)
	}
	settingsBlob, err := json.Marshal(inst.search.Settings())
	if err != nil {
		return fmt.Errorf("encoding settings of '%s': %w", name, err)
	}

	snap := store.Snapshot{
		Name:       name,
		Corpus:     corpusBlob,
		Vocabulary: vocabBlob,
		TF:         tfBlob,
		TFIDF:      tfidfBlob,
		Settings:   settingsBlob,
		CreatedAt:  time.Now().UTC(),
	}
	// Held across the save so a deleted or replaced corpus is never written back.
	e.mu.RLock()
	defer e.mu.RUnlock()
	current, exists := e.corpora[name]
	if !exists {
		return apperrors.NewCorpusNotFoundError(name)
	}
	if current != inst {
		e.logger.Debug("snapshot of a replaced instance not persisted", "corpus", name)
		return nil
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return err
	}
	e.logger.Info("corpus persisted", "corpus", name, "documents", ti.NumDocs(), "terms", ti.Vocabulary().Len())
	return nil
}
