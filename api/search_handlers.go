package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SearchHandler runs a keyword query against one corpus.
func (api *API) SearchHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	query, result := ValidateSearchRequest(req)
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	res, err := api.engine.Search(name, query)
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MultiSearchHandler runs one query against several corpora in parallel.
// Corpora that fail are listed in the errors field of a 200 response.
func (api *API) MultiSearchHandler(c *gin.Context) {
	var req MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	query, result := ValidateMultiSearchRequest(req)
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	res, err := api.engine.MultiSearch(c.Request.Context(), query)
	if err != nil {
		SendEngineError(c, "multi search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ThemesHandler scores the documents of a corpus against the known themes.
// With group=true documents are grouped per theme instead.
func (api *API) ThemesHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}

	if boolQuery(c, "group") {
		grouper, ok := api.engine.(themeGrouper)
		if !ok {
			SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Theme groups not supported by this engine")
			return
		}
		groups, err := grouper.ThemeGroups(name)
		if err != nil {
			SendEngineError(c, "theme grouping", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"corpus": name, "groups": groups})
		return
	}

	docs, err := api.engine.Themes(name)
	if err != nil {
		SendEngineError(c, "theme detection", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"corpus":    name,
		"documents": docs,
		"total":     len(docs),
	})
}
