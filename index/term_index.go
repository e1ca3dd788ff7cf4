package index

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/tokenizer"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// TermIndex holds the vocabulary, TF and TF-IDF matrices of one corpus snapshot.
// Row r of both matrices is the document at ordinal r of the snapshot.
// A TermIndex is immutable once returned by Build, Restore or Recompute and
// may be shared across goroutines without locking.
type TermIndex struct {
	docs     []model.Document
	vocab    *Vocabulary
	tf       *SparseMatrix
	tfidf    *SparseMatrix
	idf      []float64
	analyzer tokenizer.Analyzer
	workers  int
	logger   *slog.Logger
}

// Option configures how a TermIndex is built.
type Option func(*TermIndex)

// WithAnalyzer sets the analyzer used for documents and queries.
func WithAnalyzer(a tokenizer.Analyzer) Option {
	return func(ti *TermIndex) {
		ti.analyzer = a
	}
}

// WithWorkers sets how many goroutines tokenize documents during Build.
// Values below 2 tokenize sequentially.
func WithWorkers(n int) Option {
	return func(ti *TermIndex) {
		ti.workers = n
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ti *TermIndex) {
		if logger == nil {
			logger = slog.Default()
		}
		ti.logger = logger
	}
}

func newTermIndex(docs []model.Document, opts []Option) *TermIndex {
	ti := &TermIndex{
		docs:   docs,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti
}

// Build indexes docs in order: document i becomes row i.
// Terms get ids in order of first occurrence across the whole slice.
func Build(docs []model.Document, opts ...Option) (*TermIndex, error) {
	ti := newTermIndex(docs, opts)

	tokens, err := ti.tokenizeAll()
	if err != nil {
		return nil, err
	}

	vocab := NewVocabulary()
	builder := newMatrixBuilder(len(docs))
	for _, docTokens := range tokens {
		// Within-document multiplicity
		counts := make(map[int]float64)
		for _, token := range docTokens {
			id := vocab.intern(token)
			counts[id]++
			vocab.terms[id].Occurrences++
		}
		// Cross-document presence, once per distinct term
		for id := range counts {
			vocab.terms[id].DocFreq++
		}
		builder.appendRow(counts)
	}

	ti.vocab = vocab
	ti.tf = builder.build(vocab.Len())
	if err := ti.computeTFIDF(); err != nil {
		return nil, err
	}

	ti.logger.Debug("term index built",
		"documents", len(docs),
		"terms", vocab.Len(),
		"nonzero", ti.tf.NNZ())
	return ti, nil
}

// tokenizeAll returns the analyzed tokens of every document, by ordinal.
func (ti *TermIndex) tokenizeAll() ([][]string, error) {
	tokens := make([][]string, len(ti.docs))
	if ti.workers < 2 || len(ti.docs) < 2 {
		for i := range ti.docs {
			tokens[i] = ti.analyzer.Tokens(ti.docs[i].Body)
		}
		return tokens, nil
	}

	pool, err := ants.NewPool(ti.workers)
	if err != nil {
		return nil, fmt.Errorf("creating tokenizer pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range ti.docs {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			tokens[i] = ti.analyzer.Tokens(ti.docs[i].Body)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting document %d: %w", i, err)
		}
	}
	wg.Wait()
	return tokens, nil
}

// Restore reassembles a TermIndex from stored parts without recomputing them.
// Column coherence is not enforced here; see Coherent.
func Restore(docs []model.Document, vocab *Vocabulary, tf, tfidf *SparseMatrix, opts ...Option) (*TermIndex, error) {
	if vocab == nil || tf == nil || tfidf == nil {
		return nil, errors.NewValidationError("index", "vocabulary, tf and tfidf are all required")
	}
	if !tf.valid() || !tfidf.valid() {
		return nil, errors.NewValidationError("index", "malformed sparse matrix")
	}
	if tf.Rows != len(docs) || tfidf.Rows != len(docs) {
		return nil, errors.NewValidationError("index",
			fmt.Sprintf("matrices have %d/%d rows for %d documents", tf.Rows, tfidf.Rows, len(docs)))
	}

	ti := newTermIndex(docs, opts)
	ti.vocab = vocab
	ti.tf = tf
	ti.tfidf = tfidf
	ti.idf = ti.computeIDF()
	return ti, nil
}

// Recompute returns a copy of ti whose TF-IDF matrix is derived again from TF.
func (ti *TermIndex) Recompute() (*TermIndex, error) {
	out := *ti
	if err := out.computeTFIDF(); err != nil {
		return nil, err
	}
	return &out, nil
}

// computeTFIDF derives idf and TF-IDF. A TF matrix whose width differs from
// the vocabulary is rebuilt first.
func (ti *TermIndex) computeTFIDF() error {
	if ti.tf.Cols != ti.vocab.Len() || ti.tf.Rows != len(ti.docs) {
		ti.logger.Warn("tf matrix does not match vocabulary, rebuilding",
			"tf_rows", ti.tf.Rows,
			"tf_cols", ti.tf.Cols,
			"documents", len(ti.docs),
			"terms", ti.vocab.Len())
		ti.tf = ti.rebuildTF()
	}

	ti.idf = ti.computeIDF()
	tfidf, err := ti.tf.ScaleColumns(ti.idf)
	if err != nil {
		return err
	}
	ti.tfidf = tfidf
	return nil
}

// rebuildTF recounts every document against the current vocabulary.
// Tokens the vocabulary does not know are skipped.
func (ti *TermIndex) rebuildTF() *SparseMatrix {
	builder := newMatrixBuilder(len(ti.docs))
	for i := range ti.docs {
		counts := make(map[int]float64)
		for _, token := range ti.analyzer.Tokens(ti.docs[i].Body) {
			if id, ok := ti.vocab.ID(token); ok {
				counts[id]++
			}
		}
		builder.appendRow(counts)
	}
	return builder.build(ti.vocab.Len())
}

// computeIDF returns ln((N+1)/(df+1)) + 1 for every term id.
func (ti *TermIndex) computeIDF() []float64 {
	n := float64(len(ti.docs))
	idf := make([]float64, ti.vocab.Len())
	for id, stats := range ti.vocab.terms {
		idf[id] = math.Log((n+1)/(float64(stats.DocFreq)+1)) + 1
	}
	return idf
}

// Coherent returns a ShapeMismatchError when either matrix disagrees with
// the vocabulary size.
func (ti *TermIndex) Coherent() error {
	if ti.tf.Cols != ti.vocab.Len() {
		return errors.NewShapeMismatchError(ti.tf.Cols, ti.vocab.Len())
	}
	if ti.tfidf.Cols != ti.vocab.Len() {
		return errors.NewShapeMismatchError(ti.tfidf.Cols, ti.vocab.Len())
	}
	return nil
}

// IDF returns the inverse document frequency of term.
func (ti *TermIndex) IDF(term string) (float64, bool) {
	id, ok := ti.vocab.ID(term)
	if !ok || id >= len(ti.idf) {
		return 0, false
	}
	return ti.idf[id], true
}

// IDFVector returns a copy of the idf weights, indexed by term id.
func (ti *TermIndex) IDFVector() []float64 {
	return append([]float64(nil), ti.idf...)
}

// QueryVector is a dense query representation aligned with the vocabulary.
type QueryVector struct {
	Values  []float64
	Unknown []string // Query tokens absent from the vocabulary
}

// IsZero reports whether no query term contributed weight.
func (qv QueryVector) IsZero() bool {
	for _, v := range qv.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm of the vector.
func (qv QueryVector) Norm() float64 {
	var sum float64
	for _, v := range qv.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Vectorize counts the known query terms, then weights each count by idf.
func (ti *TermIndex) Vectorize(query string) QueryVector {
	qv := QueryVector{Values: make([]float64, ti.vocab.Len())}
	for _, token := range ti.Tokens(query) {
		id, ok := ti.vocab.ID(token)
		if !ok {
			ti.logger.Debug("query term not in vocabulary", "term", token)
			qv.Unknown = append(qv.Unknown, token)
			continue
		}
		qv.Values[id]++
	}
	for id, count := range qv.Values {
		if count != 0 && id < len(ti.idf) {
			qv.Values[id] = count * ti.idf[id]
		}
	}
	return qv
}

// Tokens analyzes text the way documents were analyzed at build time.
func (ti *TermIndex) Tokens(text string) []string {
	return ti.analyzer.Tokens(text)
}

// TopTerms returns the n terms with the most occurrences, ties by id.
// n <= 0 returns every term.
func (ti *TermIndex) TopTerms(n int) []TermStats {
	terms := ti.vocab.Terms()
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Occurrences > terms[j].Occurrences
	})
	if n > 0 && n < len(terms) {
		terms = terms[:n]
	}
	return terms
}

// NumDocs returns the number of indexed documents.
func (ti *TermIndex) NumDocs() int {
	return len(ti.docs)
}

// Documents returns the indexed documents by ordinal.
// The slice is shared and must not be modified.
func (ti *TermIndex) Documents() []model.Document {
	return ti.docs
}

// Vocabulary returns the index vocabulary.
func (ti *TermIndex) Vocabulary() *Vocabulary {
	return ti.vocab
}

// TF returns the term frequency matrix.
func (ti *TermIndex) TF() *SparseMatrix {
	return ti.tf
}

// TFIDF returns the weighted matrix used for scoring.
func (ti *TermIndex) TFIDF() *SparseMatrix {
	return ti.tfidf
}

// Analyzer returns the analyzer shared by documents and queries.
func (ti *TermIndex) Analyzer() tokenizer.Analyzer {
	return ti.analyzer
}
