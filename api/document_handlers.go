package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/ingest"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// tsvContentType selects the speech CSV reader for a documents upload.
const tsvContentType = "text/tab-separated-values"

// AddDocumentsHandler inserts documents into a corpus.
// The body is one JSON document, a JSON array, or a tab-separated speech
// file when sent as text/tab-separated-values.
// Query: async=true runs the insert as a job, build=true rebuilds the index afterwards.
func (api *API) AddDocumentsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	if _, err := api.engine.CorpusInfo(name); err != nil {
		SendEngineError(c, "document insert", err)
		return
	}

	var (
		docs []model.Document
		err  error
	)
	if strings.HasPrefix(c.ContentType(), tsvContentType) {
		docs, err = ingest.ReadSpeechCSV(c.Request.Body, ingest.SpeechOptions{})
		if err != nil {
			var validationErr *apperrors.ValidationError
			if errors.As(err, &validationErr) {
				SendEngineError(c, "speech file parsing", err)
				return
			}
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidBody, "Invalid speech file: "+err.Error())
			return
		}
	} else if docs, err = ingest.ReadJSON(c.Request.Body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if len(docs) == 0 {
		result := &ValidationResult{Valid: true}
		result.AddError("documents", "No documents provided")
		SendStructuredValidationError(c, result)
		return
	}

	build := boolQuery(c, "build")
	if boolQuery(c, "async") {
		jobID, err := api.engine.AddDocumentsAsync(name, docs, build)
		if err != nil {
			SendJobExecutionError(c, "document insert", err)
			return
		}
		sendAccepted(c, fmt.Sprintf("Insert of %d documents started for '%s'", len(docs), name), jobID)
		return
	}

	result, err := api.engine.AddDocuments(name, docs)
	if err != nil {
		SendEngineError(c, "document insert", err)
		return
	}
	if build {
		if err := api.engine.BuildIndex(name); err != nil {
			SendEngineError(c, "index build", err)
			return
		}
	}
	c.JSON(http.StatusOK, result)
}

// GetDocumentsHandler lists the documents of a corpus.
// Query: sort=recent|title (default insertion order), n (default all).
func (api *API) GetDocumentsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	n, ok := intQuery(c, "n", 0)
	if !ok {
		return
	}
	corp, err := api.engine.GetCorpus(name)
	if err != nil {
		SendEngineError(c, "document listing", err)
		return
	}

	var docs []model.Document
	switch c.Query("sort") {
	case "":
		docs = corp.Documents()
		if n > 0 && n < len(docs) {
			docs = docs[:n]
		}
	case "recent":
		docs = corp.ByRecency(n)
	case "title":
		docs = corp.ByTitle(n)
	default:
		result := &ValidationResult{Valid: true}
		result.AddError("sort", "sort must be 'recent' or 'title'")
		SendStructuredValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     corp.Len(),
	})
}

// ListAuthorsHandler lists the authors of a corpus in order of first appearance.
func (api *API) ListAuthorsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	corp, err := api.engine.GetCorpus(name)
	if err != nil {
		SendEngineError(c, "author listing", err)
		return
	}
	authors := corp.Authors()
	c.JSON(http.StatusOK, gin.H{
		"authors": authors,
		"total":   len(authors),
	})
}

// GetAuthorHandler returns one author with the URLs of their documents.
func (api *API) GetAuthorHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	corp, err := api.engine.GetCorpus(name)
	if err != nil {
		SendEngineError(c, "author lookup", err)
		return
	}
	author := c.Param("author")
	a, found := corp.Author(author)
	if !found {
		SendError(c, http.StatusNotFound, ErrorCodeAuthorNotFound,
			"Author '"+author+"' not found in corpus '"+name+"'")
		return
	}
	c.JSON(http.StatusOK, a)
}

// WordStatsHandler returns the most frequent words of a corpus. Query: n (default 20).
func (api *API) WordStatsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	n, ok := intQuery(c, "n", 20)
	if !ok {
		return
	}
	corp, err := api.engine.GetCorpus(name)
	if err != nil {
		SendEngineError(c, "word statistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": corp.WordStats(n)})
}

// ConcordanceHandler returns every occurrence of a keyword with its context.
// Query: q (required), context (characters on each side, default 30).
func (api *API) ConcordanceHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		result := &ValidationResult{Valid: true}
		result.AddError("q", "Keyword is required")
		SendStructuredValidationError(c, result)
		return
	}
	width, ok := intQuery(c, "context", 30)
	if !ok {
		return
	}
	corp, err := api.engine.GetCorpus(name)
	if err != nil {
		SendEngineError(c, "concordance", err)
		return
	}
	lines := corp.Concordance(keyword, width)
	c.JSON(http.StatusOK, gin.H{
		"keyword": keyword,
		"lines":   lines,
		"total":   len(lines),
	})
}
