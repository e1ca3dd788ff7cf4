// Package corpus owns the ordered document collection of one named corpus
// together with its derived author aggregate.
package corpus

import (
	"bytes"
	"encoding/gob"
	"sort"
	"strings"
	"sync"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// Author aggregates the documents written by one author.
type Author struct {
	Name          string   `json:"name"`
	DocumentCount int      `json:"document_count"`
	Documents     []string `json:"documents"` // Source URLs, in insertion order
}

// Corpus is an insertion-ordered set of documents keyed by source URL.
// It is safe for concurrent use.
type Corpus struct {
	Mu      sync.RWMutex
	name    string
	docs    []model.Document
	byURL   map[string]int
	authors map[string]*Author
}

// New returns an empty corpus.
func New(name string) *Corpus {
	return &Corpus{
		name:    name,
		docs:    make([]model.Document, 0),
		byURL:   make(map[string]int),
		authors: make(map[string]*Author),
	}
}

// FromDocuments returns a corpus holding docs in order.
// It fails on the first invalid or duplicate document.
func FromDocuments(name string, docs []model.Document) (*Corpus, error) {
	c := New(name)
	for _, doc := range docs {
		if _, err := c.Insert(doc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name returns the corpus name.
func (c *Corpus) Name() string {
	return c.name
}

// Insert appends doc and returns its id, the source URL.
// A document whose source URL is already present is rejected and the corpus
// is left unchanged.
func (c *Corpus) Insert(doc model.Document) (string, error) {
	if field, message := doc.Validate(); field != "" {
		return "", errors.NewValidationError(field, message)
	}
	if doc.Origin == "" {
		doc.Origin = model.OriginGeneric
	}

	c.Mu.Lock()
	defer c.Mu.Unlock()

	id := doc.ID()
	if _, exists := c.byURL[id]; exists {
		return "", errors.NewDuplicateDocumentError(id, c.name)
	}
	c.appendLocked(doc.Clone())
	return id, nil
}

func (c *Corpus) appendLocked(doc model.Document) {
	c.byURL[doc.ID()] = len(c.docs)
	c.docs = append(c.docs, doc)

	author, ok := c.authors[doc.Author]
	if !ok {
		author = &Author{Name: doc.Author}
		c.authors[doc.Author] = author
	}
	author.DocumentCount++
	author.Documents = append(author.Documents, doc.ID())
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return len(c.docs)
}

// Get returns the document stored under id.
func (c *Corpus) Get(id string) (model.Document, bool) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	i, ok := c.byURL[id]
	if !ok {
		return model.Document{}, false
	}
	return c.docs[i].Clone(), true
}

// Documents returns a copy of every document in insertion order.
func (c *Corpus) Documents() []model.Document {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make([]model.Document, len(c.docs))
	for i, doc := range c.docs {
		out[i] = doc.Clone()
	}
	return out
}

// Authors returns a copy of the author aggregate sorted by name.
func (c *Corpus) Authors() []Author {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make([]Author, 0, len(c.authors))
	for _, a := range c.authors {
		out = append(out, Author{
			Name:          a.Name,
			DocumentCount: a.DocumentCount,
			Documents:     append([]string(nil), a.Documents...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Author returns the aggregate of one author.
func (c *Corpus) Author(name string) (Author, bool) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	a, ok := c.authors[name]
	if !ok {
		return Author{}, false
	}
	return Author{
		Name:          a.Name,
		DocumentCount: a.DocumentCount,
		Documents:     append([]string(nil), a.Documents...),
	}, true
}

// ByRecency returns the n most recent documents, newest first.
// Equal dates keep insertion order. n <= 0 returns every document.
func (c *Corpus) ByRecency(n int) []model.Document {
	docs := c.Documents()
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].PublishedAt.After(docs[j].PublishedAt)
	})
	return firstN(docs, n)
}

// ByTitle returns the first n documents in ascending title order.
// Equal titles keep insertion order. n <= 0 returns every document.
func (c *Corpus) ByTitle(n int) []model.Document {
	docs := c.Documents()
	sort.SliceStable(docs, func(i, j int) bool {
		return strings.Compare(docs[i].Title, docs[j].Title) < 0
	})
	return firstN(docs, n)
}

func firstN(docs []model.Document, n int) []model.Document {
	if n > 0 && n < len(docs) {
		return docs[:n]
	}
	return docs
}

// gobCorpusData is a helper struct for Gob encoding/decoding Corpus.
// It excludes the mutex and the derived maps.
type gobCorpusData struct {
	Name string
	Docs []model.Document
}

// GobEncode implements the gob.GobEncoder interface for Corpus.
func (c *Corpus) GobEncode() ([]byte, error) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobCorpusData{Name: c.name, Docs: c.docs}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Corpus.
// The author aggregate and URL lookup are rebuilt from the documents.
func (c *Corpus) GobDecode(data []byte) error {
	decoded := gobCorpusData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return err
	}

	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.name = decoded.Name
	c.docs = make([]model.Document, 0, len(decoded.Docs))
	c.byURL = make(map[string]int, len(decoded.Docs))
	c.authors = make(map[string]*Author)
	for _, doc := range decoded.Docs {
		c.appendLocked(doc)
	}
	return nil
}

// Encode serializes the corpus into an opaque blob.
func Encode(c *Corpus) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Corpus, error) {
	c := New("")
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}
