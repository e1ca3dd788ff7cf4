// Package testing provides utilities and helpers for testing the search engine.
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/internal/engine"
	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

// CreateTestEngine creates an engine over a gob store in a temporary
// directory. The engine is closed when the test ends.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, _ := CreateTestEngineInDir(t, t.TempDir())
	return eng
}

// CreateTestEngineInDir is CreateTestEngine over an existing data directory,
// so that a second engine can reload what a first one persisted.
func CreateTestEngineInDir(t *testing.T, dir string) (*engine.Engine, string) {
	t.Helper()
	snapshots, err := store.NewGobFileStore(dir, nil)
	require.NoError(t, err, "Failed to open snapshot store")

	eng := engine.NewEngine(snapshots, config.DefaultIndexSettings())
	t.Cleanup(func() { _ = eng.Close() })
	return eng, dir
}

// WaterDocuments returns three short documents about water, written by
// "ana" and "ben" in January, February and March 2022.
func WaterDocuments() []model.Document {
	published := func(month time.Month) time.Time {
		return time.Date(2022, month, 10, 0, 0, 0, 0, time.UTC)
	}
	return []model.Document{
		{Title: "Agriculture", Author: "ana", PublishedAt: published(time.January), SourceURL: "d1",
			Body: "Water resources are vital for agriculture"},
		{Title: "Quality", Author: "ben", PublishedAt: published(time.February), SourceURL: "d2",
			Body: "Monitoring water quality is essential for ecosystems"},
		{Title: "Droughts", Author: "ana", PublishedAt: published(time.March), SourceURL: "d3",
			Body: "The preservation of water resources helps prevent droughts"},
	}
}

// CreateWaterCorpus creates a corpus holding WaterDocuments and builds its index.
func CreateWaterCorpus(t *testing.T, eng services.CorpusManager, name string) []model.Document {
	t.Helper()
	docs := WaterDocuments()

	require.NoError(t, eng.CreateCorpus(name, config.IndexSettings{}), "Failed to create test corpus")
	_, err := eng.AddDocuments(name, docs)
	require.NoError(t, err, "Failed to add test documents")
	require.NoError(t, eng.BuildIndex(name), "Failed to build test index")

	return docs
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

// WaitForJobCompletion polls a job until it finishes or times out.
// A failed job fails the test.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
				return nil
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedCorpus string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedCorpus, job.CorpusName, "Job corpus name should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name         string
	Query        services.SearchQuery
	ExpectedURLs []string // Hit URLs in rank order
	ValidateFunc func(t *testing.T, result services.SearchResult)
}

// RunSearchTests runs a suite of search tests against one corpus.
func RunSearchTests(t *testing.T, eng services.CorpusManager, corpusName string, tests []SearchTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := eng.Search(corpusName, tt.Query)
			require.NoError(t, err, "Search should not fail")

			urls := make([]string, len(result.Hits))
			for i, hit := range result.Hits {
				urls[i] = hit.URL
			}
			if tt.ExpectedURLs != nil {
				assert.Equal(t, tt.ExpectedURLs, urls, "Hits should match in rank order")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}
