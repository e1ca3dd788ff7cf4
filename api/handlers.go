package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Linattendu/projet-moteur-recherche/internal/jobs"
	"github.com/Linattendu/projet-moteur-recherche/internal/themes"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// API holds dependencies for API handlers, primarily the corpus manager.
type API struct {
	engine services.AsyncCorpusManager
}

// themeGrouper is implemented by engines that can group documents by theme.
type themeGrouper interface {
	ThemeGroups(name string) (map[string][]themes.Member, error)
}

// jobMetricsProvider is implemented by engines that expose job counters.
type jobMetricsProvider interface {
	JobMetrics() jobs.JobMetricsData
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.AsyncCorpusManager) *API {
	return &API{engine: engine}
}

// SetupRoutes defines all the API routes for the search engine.
func SetupRoutes(router *gin.Engine, engine services.AsyncCorpusManager) {
	apiHandler := NewAPI(engine)

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.POST("/_multi_search", apiHandler.MultiSearchHandler)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}

	corpusRoutes := router.Group("/corpora")
	{
		corpusRoutes.POST("", apiHandler.CreateCorpusHandler)
		corpusRoutes.GET("", apiHandler.ListCorporaHandler)
		corpusRoutes.GET("/:name", apiHandler.GetCorpusHandler)
		corpusRoutes.DELETE("/:name", apiHandler.DeleteCorpusHandler)
		corpusRoutes.PATCH("/:name/settings", apiHandler.UpdateCorpusSettingsHandler)
		corpusRoutes.GET("/:name/stats", apiHandler.GetCorpusStatsHandler)
		corpusRoutes.POST("/:name/_build", apiHandler.BuildIndexHandler)
		corpusRoutes.POST("/:name/_persist", apiHandler.PersistCorpusHandler)
		corpusRoutes.GET("/:name/jobs", apiHandler.ListJobsHandler)

		corpusRoutes.PUT("/:name/documents", apiHandler.AddDocumentsHandler)
		corpusRoutes.GET("/:name/documents", apiHandler.GetDocumentsHandler)
		corpusRoutes.GET("/:name/authors", apiHandler.ListAuthorsHandler)
		corpusRoutes.GET("/:name/authors/:author", apiHandler.GetAuthorHandler)
		corpusRoutes.GET("/:name/words", apiHandler.WordStatsHandler)
		corpusRoutes.GET("/:name/concordance", apiHandler.ConcordanceHandler)

		corpusRoutes.POST("/:name/_search", apiHandler.SearchHandler)
		corpusRoutes.GET("/:name/themes", apiHandler.ThemesHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "projet-moteur-recherche",
		"corpora":   len(api.engine.ListCorpora()),
		"timestamp": time.Now().Unix(),
	})
}

// corpusName reads and validates the :name path parameter.
// It writes the error response and returns false when the name is invalid.
func corpusName(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if result := ValidateCorpusName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return "", false
	}
	return name, true
}

// intQuery reads a non-negative integer query parameter, falling back to def.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		result := &ValidationResult{Valid: true}
		result.AddError(key, "'"+key+"' must be a non-negative integer")
		SendStructuredValidationError(c, result)
		return 0, false
	}
	return n, true
}

// boolQuery reads a boolean query parameter; anything unparsable is false.
func boolQuery(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

func sendAccepted(c *gin.Context, message, jobID string) {
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": message,
		"job_id":  jobID,
	})
}
