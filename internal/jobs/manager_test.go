package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// waitForStatus polls until the job reaches a finished state or the deadline passes.
func waitForStatus(t *testing.T, m *Manager, jobID string) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.GetJob(jobID)
		if err != nil {
			t.Fatalf("GetJob(%s): %v", jobID, err)
		}
		if job.Finished() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", jobID)
	return nil
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "news", map[string]string{
		"documents": "3",
	})
	if jobID == "" {
		t.Fatal("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}
	if job.Type != model.JobTypeBuildIndex {
		t.Errorf("Expected job type %s, got %s", model.JobTypeBuildIndex, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.CorpusName != "news" {
		t.Errorf("Expected corpus name 'news', got %s", job.CorpusName)
	}
	if job.Metadata["documents"] != "3" {
		t.Errorf("Expected metadata to be kept, got %v", job.Metadata)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "news", nil)
	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 1, 2, "tokenized")
		manager.UpdateJobProgress(jobID, 2, 2, "weighted")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID)
	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.Progress == nil {
		t.Fatal("Expected job progress to be set")
	}
	if job.Progress.Current != 2 || job.Progress.Total != 2 {
		t.Errorf("Expected progress 2/2, got %d/%d", job.Progress.Current, job.Progress.Total)
	}
	if job.Progress.Percentage() != 100 {
		t.Errorf("Expected 100%%, got %v", job.Progress.Percentage())
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}

	// A finished job cannot run again
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }); err == nil {
		t.Error("Expected error when executing a finished job")
	}
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypePersist, "news", nil, func(ctx context.Context, job *model.Job) error {
		return errors.New("disk full")
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	job := waitForStatus(t, manager, jobID)
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected job status %s, got %s", model.JobStatusFailed, job.Status)
	}
	if job.Error != "disk full" {
		t.Errorf("Expected error 'disk full', got %q", job.Error)
	}

	metrics := manager.GetMetrics()
	if metrics.JobsFailed != 1 {
		t.Errorf("Expected 1 failed job, got %d", metrics.JobsFailed)
	}
	if metrics.SuccessRate != 0 {
		t.Errorf("Expected success rate 0, got %v", metrics.SuccessRate)
	}
}

func TestJobManager_GetUnknownJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	if !errors.Is(err, apperrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
	if err := manager.ExecuteJob("missing", nil); !errors.Is(err, apperrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound from ExecuteJob, got %v", err)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeBuildIndex, "news", nil)
	time.Sleep(2 * time.Millisecond)
	second := manager.CreateJob(model.JobTypeIngest, "news", nil)
	manager.CreateJob(model.JobTypeBuildIndex, "speeches", nil)

	jobs := manager.ListJobs("news", nil)
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs for news, got %d", len(jobs))
	}
	if jobs[0].ID != second || jobs[1].ID != first {
		t.Errorf("Expected newest job first")
	}

	done := waitForStatus(t, manager, mustSubmit(t, manager, "news"))
	completed := model.JobStatusCompleted
	filtered := manager.ListJobs("news", &completed)
	if len(filtered) != 1 || filtered[0].ID != done.ID {
		t.Errorf("Expected only the completed job, got %d jobs", len(filtered))
	}
}

func mustSubmit(t *testing.T, m *Manager, corpus string) string {
	t.Helper()
	jobID, err := m.Submit(model.JobTypeBuildIndex, corpus, nil, func(ctx context.Context, job *model.Job) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return jobID
}

func TestJobManager_ConcurrencyLimit(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	var running, peak int32
	release := make(chan struct{})
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		jobID, err := manager.Submit(model.JobTypeBuildIndex, "news", nil, func(ctx context.Context, job *model.Job) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&running, -1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		ids = append(ids, jobID)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	for _, id := range ids {
		waitForStatus(t, manager, id)
	}
	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent jobs, saw %d", peak)
	}
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1)

	started := make(chan struct{})
	jobID, err := manager.Submit(model.JobTypeBuildIndex, "news", nil, func(ctx context.Context, job *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-started
	manager.Stop()

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected job status %s after stop, got %s", model.JobStatusFailed, job.Status)
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := waitForStatus(t, manager, mustSubmit(t, manager, "news")).ID
	pending := manager.CreateJob(model.JobTypeBuildIndex, "news", nil)

	if n := manager.CleanupOldJobs(time.Hour); n != 0 {
		t.Errorf("Expected nothing cleaned, got %d", n)
	}
	time.Sleep(2 * time.Millisecond)
	if n := manager.CleanupOldJobs(time.Millisecond); n != 1 {
		t.Errorf("Expected 1 job cleaned, got %d", n)
	}
	if _, err := manager.GetJob(jobID); err == nil {
		t.Error("Expected finished job to be removed")
	}
	if _, err := manager.GetJob(pending); err != nil {
		t.Error("Expected pending job to be kept")
	}
}

func TestJobMetrics(t *testing.T) {
	metrics := NewJobMetrics()
	metrics.RecordJobCreated(model.JobTypeBuildIndex)
	metrics.RecordJobStatusChange(model.JobStatusPending, model.JobStatusRunning)
	metrics.RecordJobStatusChange(model.JobStatusRunning, model.JobStatusCompleted)
	metrics.RecordJobCompleted(model.JobTypeBuildIndex, 20*time.Millisecond)

	data := metrics.GetMetrics()
	if data.JobsCreated != 1 || data.JobsCompleted != 1 {
		t.Errorf("Expected 1 created and 1 completed, got %d and %d", data.JobsCreated, data.JobsCompleted)
	}
	if data.CurrentWorkload != 0 {
		t.Errorf("Expected no workload, got %d", data.CurrentWorkload)
	}
	if data.AverageExecutionTime != 20*time.Millisecond {
		t.Errorf("Expected average 20ms, got %v", data.AverageExecutionTime)
	}
	if data.AverageByType[model.JobTypeBuildIndex] != int64(20*time.Millisecond) {
		t.Errorf("Expected per-type average 20ms, got %v", data.AverageByType[model.JobTypeBuildIndex])
	}
	if data.SuccessRate != 1 {
		t.Errorf("Expected success rate 1, got %v", data.SuccessRate)
	}
}
