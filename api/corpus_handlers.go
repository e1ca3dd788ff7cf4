package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Linattendu/projet-moteur-recherche/config"
)

// CreateCorpusRequest is the body of a corpus creation call.
// Omitted settings use the engine defaults.
type CreateCorpusRequest struct {
	Name     string               `json:"name"`
	Settings config.IndexSettings `json:"settings"`
}

// CreateCorpusHandler registers a new empty corpus.
func (api *API) CreateCorpusHandler(c *gin.Context) {
	var req CreateCorpusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateCorpusName(req.Name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	if err := api.engine.CreateCorpus(req.Name, req.Settings); err != nil {
		SendEngineError(c, "corpus creation", err)
		return
	}
	info, err := api.engine.CorpusInfo(req.Name)
	if err != nil {
		SendEngineError(c, "corpus creation", err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// ListCorporaHandler lists every corpus with its summary.
func (api *API) ListCorporaHandler(c *gin.Context) {
	names := api.engine.ListCorpora()
	corpora := make([]any, 0, len(names))
	for _, name := range names {
		info, err := api.engine.CorpusInfo(name)
		if err != nil {
			// Deleted between the listing and this call.
			continue
		}
		corpora = append(corpora, info)
	}
	c.JSON(http.StatusOK, gin.H{
		"corpora": corpora,
		"total":   len(corpora),
	})
}

// GetCorpusHandler returns the summary of one corpus.
func (api *API) GetCorpusHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	info, err := api.engine.CorpusInfo(name)
	if err != nil {
		SendEngineError(c, "corpus lookup", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// DeleteCorpusHandler removes a corpus and its stored snapshot.
func (api *API) DeleteCorpusHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	if err := api.engine.DeleteCorpus(name); err != nil {
		SendEngineError(c, "corpus deletion", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Corpus '" + name + "' deleted"})
}

// UpdateCorpusSettingsHandler replaces the settings of a corpus.
func (api *API) UpdateCorpusSettingsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	var settings config.IndexSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.UpdateCorpusSettings(name, settings); err != nil {
		SendEngineError(c, "settings update", err)
		return
	}
	info, err := api.engine.CorpusInfo(name)
	if err != nil {
		SendEngineError(c, "settings update", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetCorpusStatsHandler returns the summary of a corpus with its top words
// and terms. Query: n (default 20).
func (api *API) GetCorpusStatsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	n, ok := intQuery(c, "n", 20)
	if !ok {
		return
	}
	stats, err := api.engine.CorpusStats(name, n)
	if err != nil {
		SendEngineError(c, "corpus statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BuildIndexHandler rebuilds the index of a corpus in a background job.
// With sync=true the build runs inside the request.
func (api *API) BuildIndexHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}

	if boolQuery(c, "sync") {
		if err := api.engine.BuildIndex(name); err != nil {
			SendEngineError(c, "index build", err)
			return
		}
		info, err := api.engine.CorpusInfo(name)
		if err != nil {
			SendEngineError(c, "index build", err)
			return
		}
		c.JSON(http.StatusOK, info)
		return
	}

	jobID, err := api.engine.BuildIndexAsync(name)
	if err != nil {
		if _, lookupErr := api.engine.CorpusInfo(name); lookupErr != nil {
			SendEngineError(c, "index build", lookupErr)
			return
		}
		SendJobExecutionError(c, "index build", err)
		return
	}
	sendAccepted(c, "Index build started for '"+name+"'", jobID)
}

// PersistCorpusHandler saves a corpus and its index to the snapshot store.
// With sync=true the save runs inside the request.
func (api *API) PersistCorpusHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}

	if boolQuery(c, "sync") {
		if err := api.engine.PersistCorpus(name); err != nil {
			SendEngineError(c, "persist", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Corpus '" + name + "' persisted"})
		return
	}

	jobID, err := api.engine.PersistCorpusAsync(name)
	if err != nil {
		if _, lookupErr := api.engine.CorpusInfo(name); lookupErr != nil {
			SendEngineError(c, "persist", lookupErr)
			return
		}
		SendJobExecutionError(c, "persist", err)
		return
	}
	sendAccepted(c, "Persist started for '"+name+"'", jobID)
}
