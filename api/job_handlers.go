package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}
	job, err := jobManager.GetJob(jobID)
	if err != nil {
		SendEngineError(c, "job lookup", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list jobs for a corpus. Query: status.
func (api *API) ListJobsHandler(c *gin.Context) {
	name, ok := corpusName(c)
	if !ok {
		return
	}

	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		switch status {
		case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
			model.JobStatusFailed, model.JobStatusCancelled:
		default:
			result := &ValidationResult{Valid: true}
			result.AddError("status", "Unknown job status '"+statusParam+"'")
			SendStructuredValidationError(c, result)
			return
		}
		statusFilter = &status
	}

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}
	jobs := jobManager.ListJobs(name, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"corpus": name,
		"total":  len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	provider, ok := api.engine.(jobMetricsProvider)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job metrics not supported by this engine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": provider.JobMetrics()})
}
